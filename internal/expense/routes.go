package expense

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the expense endpoints. Reviewer actions (status
// transitions, edits) sit behind the admin gate; submission, listing and
// annotation do not.
func (h *Handler) MountRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Post("/expenses", h.Create)
	r.Get("/expenses", h.List)
	r.Get("/expenses/{id}", h.Show)
	r.Post("/expenses/{id}/notes", h.Annotate)
	r.Get("/expenses/{id}/advisory", h.Advisory)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/expenses/{id}/status", h.Transition)
		r.Put("/expenses/{id}", h.Update)
	})
}
