package export

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ccube-expense/ccube-expense/internal/expense"
)

// ClaimSource lists the claims to export.
type ClaimSource interface {
	List() []expense.Expense
}

// Handler serves the CSV download.
type Handler struct {
	logger *slog.Logger
	writer *Writer
	claims ClaimSource
}

// NewHandler constructs the export handler.
func NewHandler(logger *slog.Logger, writer *Writer, claims ClaimSource) *Handler {
	return &Handler{logger: logger, writer: writer, claims: claims}
}

// MountRoutes attaches the export endpoints.
func (h *Handler) MountRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/export/expenses.csv", h.Expenses)
	})
}

// Expenses handles GET /api/export/expenses.csv.
func (h *Handler) Expenses(w http.ResponseWriter, r *http.Request) {
	filename := "expenses-" + time.Now().UTC().Format(time.DateOnly) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := h.writer.Write(w, h.claims.List()); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.Error("export expenses", slog.Any("error", err))
	}
}
