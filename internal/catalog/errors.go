package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFormula indicates no formula template matches a component.
	ErrNoFormula = errors.New("no formula for component")
	// ErrAmbiguousFormula indicates two matching templates share a priority.
	ErrAmbiguousFormula = errors.New("ambiguous formula priority")
	// ErrDuplicateTemplate indicates two active templates share a key tuple.
	ErrDuplicateTemplate = errors.New("duplicate formula template")
	// ErrDuplicateDefault indicates two eligibility defaults in one context.
	ErrDuplicateDefault = errors.New("duplicate eligibility default")
	// ErrNoEligibleOption indicates a required component has no candidates.
	ErrNoEligibleOption = errors.New("no eligible option for component")
	// ErrUndefinedMargin indicates a configured margin at or above 100%.
	ErrUndefinedMargin = errors.New("margin at or above 100%")
	// ErrIncompletePricing indicates a rate-sheet entry missing the values
	// its pricing method needs.
	ErrIncompletePricing = errors.New("incomplete pricing configuration")
	// ErrUnknownReference indicates a record referencing a missing code.
	ErrUnknownReference = errors.New("unknown reference")
)

// ConfigurationError reports bad seed data: a missing or ambiguous formula,
// an unsatisfiable eligibility rule, an undefined pricing margin. It always
// propagates to the caller; the engine never patches configuration silently.
type ConfigurationError struct {
	Subject string // the offending record, e.g. "wood-vertical/picket"
	Detail  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("catalog %s: %v", e.Subject, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v: %s", e.Subject, e.Err, e.Detail)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ConfigErr builds a ConfigurationError for the given subject.
func ConfigErr(subject string, err error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Subject: subject, Err: err, Detail: fmt.Sprintf(format, args...)}
}
