package bom

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/bom/compute", h.Compute)
	r.Post("/bom/compute-project", h.ComputeProject)
}
