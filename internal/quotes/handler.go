package quotes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/palisade-ops/palisade/internal/bom"
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

// Create handles POST /quotes/estimates.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	runs := make([]bom.CalculationRequest, 0, len(req.Runs))
	for _, run := range req.Runs {
		runs = append(runs, bom.CalculationRequest{
			ProductType: run.ProductType,
			Style:       run.Style,
			Inputs:      run.Inputs,
		})
	}

	estimate, err := h.service.Create(r.Context(), CreateEstimateRequest{
		CommunityID: req.CommunityID,
		ProjectID:   req.ProjectID,
		Runs:        runs,
	})
	if err != nil {
		h.logger.Error("create estimate failed",
			"community_id", req.CommunityID, "runs", len(runs), "error", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, estimate)
}

// Get handles GET /quotes/estimates/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "estimate IDs are UUIDs")
		return
	}

	estimate, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrEstimateNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("get estimate failed", "id", id, "error", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, estimate)
}
