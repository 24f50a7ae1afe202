package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/palisade-ops/palisade/internal/catalog"
	jobmetrics "github.com/palisade-ops/palisade/internal/jobs"
	"github.com/palisade-ops/palisade/internal/quotes"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskEstimatePersist stamps a computed estimate onto its project record.
	TaskEstimatePersist = "estimate:persist"
	// TaskCatalogValidate runs the nightly catalog integrity check.
	TaskCatalogValidate = "catalog:validate"
)

// EstimatePersistPayload identifies the estimate and the project to stamp.
type EstimatePersistPayload struct {
	EstimateID uuid.UUID `json:"estimate_id"`
	ProjectID  string    `json:"project_id"`
}

// NewEstimatePersistTask constructs an Asynq task.
func NewEstimatePersistTask(payload EstimatePersistPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEstimatePersist, data), nil
}

// NewCatalogValidateTask constructs the nightly validation task.
func NewCatalogValidateTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogValidate, nil)
}

// EstimatePersistHandler writes estimate snapshots onto project records.
type EstimatePersistHandler struct {
	logger  *slog.Logger
	repo    quotes.Repository
	metrics *jobmetrics.Metrics
}

func NewEstimatePersistHandler(logger *slog.Logger, repo quotes.Repository) *EstimatePersistHandler {
	return &EstimatePersistHandler{
		logger:  logger,
		repo:    repo,
		metrics: jobmetrics.NewMetrics(nil),
	}
}

// ProcessTask handles TaskEstimatePersist. A missing estimate is permanent:
// retrying cannot create it.
func (h *EstimatePersistHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track(TaskEstimatePersist)
	var payload EstimatePersistPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if err := h.repo.AttachToProject(ctx, payload.EstimateID, payload.ProjectID); err != nil {
		_ = tracker.End(err)
		if errors.Is(err, quotes.ErrEstimateNotFound) {
			h.logger.Error("estimate persist: estimate missing",
				"estimate_id", payload.EstimateID, "project_id", payload.ProjectID)
			return asynq.SkipRetry
		}
		return fmt.Errorf("attach estimate %s: %w", payload.EstimateID, err)
	}
	h.logger.Info("estimate persisted to project",
		"estimate_id", payload.EstimateID, "project_id", payload.ProjectID)
	return tracker.End(nil)
}

// CatalogValidateHandler runs the integrity check against a fresh load.
type CatalogValidateHandler struct {
	logger   *slog.Logger
	provider *catalog.Provider
	metrics  *jobmetrics.Metrics
}

func NewCatalogValidateHandler(logger *slog.Logger, provider *catalog.Provider) *CatalogValidateHandler {
	return &CatalogValidateHandler{
		logger:   logger,
		provider: provider,
		metrics:  jobmetrics.NewMetrics(nil),
	}
}

// ProcessTask handles TaskCatalogValidate. Violations are logged, not fatal:
// the job's purpose is surfacing them before a calculation trips over one.
func (h *CatalogValidateHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track(TaskCatalogValidate)
	violations, err := h.provider.Check(ctx)
	if err != nil {
		return tracker.End(fmt.Errorf("catalog check: %w", err))
	}
	if len(violations) == 0 {
		h.logger.Info("catalog validation clean")
		return tracker.End(nil)
	}
	for _, v := range violations {
		h.logger.Error("catalog validation violation", "error", v)
	}
	h.logger.Warn("catalog validation found violations", "count", len(violations))
	return tracker.End(nil)
}
