package bom

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/palisade-ops/palisade/internal/observability"
	"github.com/palisade-ops/palisade/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// Compute handles POST /bom/compute.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.Compute(r.Context(), req.toCalculation())
	if err != nil {
		h.logger.Error("bom compute failed",
			"product_type", req.ProductType, "style", req.Style, "error", err)
		observability.CalculationErrors.Inc()
		httpx.RespondError(w, err)
		return
	}

	observability.CalculationsTotal.Inc()
	httpx.JSON(w, http.StatusOK, result)
}

// ComputeProject handles POST /bom/compute-project.
func (h *Handler) ComputeProject(w http.ResponseWriter, r *http.Request) {
	var req ComputeProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	runs := make([]CalculationRequest, 0, len(req.Runs))
	for _, run := range req.Runs {
		runs = append(runs, run.toCalculation())
	}

	result, err := h.service.ComputeProject(r.Context(), runs)
	if err != nil {
		h.logger.Error("bom project compute failed", "runs", len(runs), "error", err)
		observability.CalculationErrors.Inc()
		httpx.RespondError(w, err)
		return
	}

	observability.CalculationsTotal.Add(float64(len(runs)))
	httpx.JSON(w, http.StatusOK, result)
}
