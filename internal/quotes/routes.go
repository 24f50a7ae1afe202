package quotes

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/quotes/estimates", h.Create)
	r.Get("/quotes/estimates/{id}", h.Get)
}
