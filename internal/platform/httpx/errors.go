// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/formula"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Formula evaluation failures and catalog configuration defects are client
// data problems (422), not server faults: the request named a catalog state
// that cannot produce a result, and the caller needs the detail to fix it.
func RespondError(w http.ResponseWriter, err error) {
	var evalErr *formula.EvaluationError
	var cfgErr *catalog.ConfigurationError

	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &evalErr):
		Problem(w, http.StatusUnprocessableEntity, "Formula Evaluation Failed", evalErr.Error())
	case errors.As(err, &cfgErr):
		Problem(w, http.StatusUnprocessableEntity, "Catalog Configuration Error", cfgErr.Error())
	case errors.Is(err, formula.ErrSyntax):
		Problem(w, http.StatusUnprocessableEntity, "Formula Syntax Error", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
