package expense

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ccube-expense/ccube-expense/internal/budget"
	"github.com/ccube-expense/ccube-expense/internal/platform/httpx"
	"github.com/ccube-expense/ccube-expense/internal/project"
)

// AdvisoryReader serves the cached advisory text for a claim. The text is
// informational only and never affects claim state or figures.
type AdvisoryReader interface {
	Text(ctx context.Context, expenseID string) (string, error)
}

// Handler exposes the claim operations over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	advisory AdvisoryReader
	validate *validator.Validate
}

// NewHandler constructs the expense handler.
func NewHandler(logger *slog.Logger, service *Service, advisory AdvisoryReader) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		advisory: advisory,
		validate: validator.New(),
	}
}

// claimResponse pairs a claim with the freshly reconciled project figures.
type claimResponse struct {
	Expense Expense        `json:"expense"`
	Figures budget.Figures `json:"figures"`
}

// Create handles POST /api/expenses.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	e, figures, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, claimResponse{Expense: e, Figures: figures})
}

// List handles GET /api/expenses.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.List())
}

// Show handles GET /api/expenses/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

// Transition handles POST /api/expenses/{id}/status.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	e, figures, err := h.service.Transition(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, claimResponse{Expense: e, Figures: figures})
}

// Update handles PUT /api/expenses/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	e, figures, err := h.service.Edit(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, claimResponse{Expense: e, Figures: figures})
}

// Annotate handles POST /api/expenses/{id}/notes.
func (h *Handler) Annotate(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}

	e, err := h.service.Annotate(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

// Advisory handles GET /api/expenses/{id}/advisory. Failures of the oracle
// are absorbed into a fallback string and never surface as errors.
func (h *Handler) Advisory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Get(id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	text, err := h.advisory.Text(r.Context(), id)
	if err != nil {
		h.logger.Warn("advisory lookup", slog.String("expense_id", id), slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"advisory": text})
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, project.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, ErrCategoryNotAllowed),
		errors.Is(err, ErrZeroAmount),
		errors.Is(err, ErrPaymentDetail):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("expense handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
