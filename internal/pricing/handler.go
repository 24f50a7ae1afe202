package pricing

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

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

// Resolve handles POST /pricing/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	reqs := make([]Request, 0, len(req.Lines))
	for _, line := range req.Lines {
		reqs = append(reqs, Request{
			SKU:            line.SKU,
			BaseCost:       line.BaseCost,
			CommunityID:    req.CommunityID,
			ClientID:       req.ClientID,
			BusinessUnitID: req.BusinessUnitID,
		})
	}

	results, err := h.service.ResolveBatch(r.Context(), reqs)
	if err != nil {
		h.logger.Error("price resolution failed",
			"community_id", req.CommunityID, "lines", len(req.Lines), "error", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ResolveResponse{Results: results})
}
