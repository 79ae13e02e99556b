package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the project endpoints. The manual adjustment ledger
// and the dashboard are reviewer-only.
func (h *Handler) MountRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/projects", h.List)
	r.Get("/projects/{id}", h.Show)
	r.Get("/categories", h.Categories)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/projects/{id}/adjustments", h.Adjust)
		r.Get("/dashboard", h.Dashboard)
	})
}
