package project

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ccube-expense/ccube-expense/internal/budget"
	"github.com/ccube-expense/ccube-expense/internal/platform/httpx"
	"github.com/ccube-expense/ccube-expense/internal/shared"
)

// FigureSource reconciles a project against the current claim set.
type FigureSource interface {
	FiguresFor(projectID string) (budget.Figures, error)
}

// AuditPort records mutations in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Handler exposes the project registry over HTTP.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	figures  FigureSource
	audit    AuditPort
	validate *validator.Validate
}

// NewHandler constructs the project handler.
func NewHandler(logger *slog.Logger, registry *Registry, figures FigureSource, audit AuditPort) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
		figures:  figures,
		audit:    audit,
		validate: validator.New(),
	}
}

// projectResponse pairs a project with its reconciled figures.
type projectResponse struct {
	Project Project        `json:"project"`
	Figures budget.Figures `json:"figures"`
}

// List handles GET /api/projects.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects := h.registry.List()
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		figures, err := h.figures.FiguresFor(p.ID)
		if err != nil {
			h.logger.Error("reconcile project", slog.String("project_id", p.ID), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		out = append(out, projectResponse{Project: p, Figures: figures})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Show handles GET /api/projects/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	p, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	figures, err := h.figures.FiguresFor(p.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, projectResponse{Project: p, Figures: figures})
}

// AdjustmentRequest appends a manual ledger entry. Positive amounts increase
// spent; negative amounts are refunds.
type AdjustmentRequest struct {
	Amount float64 `json:"amount" validate:"required"`
	Reason string  `json:"reason" validate:"required"`
}

// Adjust handles POST /api/projects/{id}/adjustments.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	projectID := chi.URLParam(r, "id")
	actor := shared.IdentityFromContext(r.Context()).Actor()
	adj, err := h.registry.AppendAdjustment(projectID, req.Amount, req.Reason, actor)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	// The ledger changed, so re-derive the figures before responding.
	figures, err := h.figures.FiguresFor(projectID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if h.audit != nil {
		err := h.audit.Record(r.Context(), shared.AuditLog{
			Actor:    actor,
			Action:   "BUDGET_ADJUST",
			Entity:   "project",
			EntityID: projectID,
			Meta:     map[string]any{"amount": adj.Amount, "reason": adj.Reason},
		})
		if err != nil {
			h.logger.Warn("record audit", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"adjustment": adj, "figures": figures})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, Categories)
}

// Dashboard handles GET /api/dashboard: reconciled figures per project plus
// overall totals.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	projects := h.registry.List()
	rows := make([]projectResponse, 0, len(projects))
	all := make([]budget.Figures, 0, len(projects))
	for _, p := range projects {
		figures, err := h.figures.FiguresFor(p.ID)
		if err != nil {
			h.logger.Error("reconcile project", slog.String("project_id", p.ID), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		rows = append(rows, projectResponse{Project: p, Figures: figures})
		all = append(all, figures)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"totals":   budget.Sum(all),
		"projects": rows,
	})
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidAdjustment):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("project handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
