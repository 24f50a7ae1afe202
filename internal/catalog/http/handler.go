package cataloghttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	provider *catalog.Provider
}

func NewHandler(logger *slog.Logger, provider *catalog.Provider) *Handler {
	return &Handler{logger: logger, provider: provider}
}

// ValidationReport is the response body for GET /catalog/validate.
type ValidationReport struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// Validate runs a fresh load-and-check pass and reports every violation.
// A broken catalog is a 200 with valid=false: the check itself succeeded.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	violations, err := h.provider.Check(r.Context())
	if err != nil {
		h.logger.Error("catalog check failed", "error", err)
		httpx.RespondError(w, err)
		return
	}

	report := ValidationReport{Valid: len(violations) == 0}
	for _, v := range violations {
		report.Violations = append(report.Violations, v.Error())
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Invalidate bumps the snapshot cache version so the next read reloads.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.Invalidate(r.Context()); err != nil {
		h.logger.Error("catalog invalidate failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/catalog/validate", h.Validate)
	r.Post("/catalog/invalidate", h.Invalidate)
}
