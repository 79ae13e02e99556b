package expense

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ccube-expense/ccube-expense/internal/budget"
	"github.com/ccube-expense/ccube-expense/internal/project"
	"github.com/ccube-expense/ccube-expense/internal/shared"
)

// SnapshotSaver persists the full claim set after each mutation.
type SnapshotSaver interface {
	Save(ctx context.Context, claims []Expense) error
}

// AuditPort records mutations in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// AdvisoryQueue enqueues an out-of-band advisory analysis for a claim.
type AdvisoryQueue interface {
	EnqueueAnalysis(ctx context.Context, claim Expense) error
}

// Service runs the claim lifecycle. Every mutation is serialised behind a
// mutex and followed by a full reconciliation pass over the owning project,
// so derived figures are never incrementally patched and cannot drift.
type Service struct {
	mu        sync.Mutex
	store     *Store
	projects  *project.Registry
	snapshots SnapshotSaver
	audit     AuditPort
	advisory  AdvisoryQueue
	logger    *slog.Logger
	threshold float64
}

// NewService constructs the expense service. Snapshots, audit and advisory
// are optional collaborators; a nil port is skipped.
func NewService(store *Store, projects *project.Registry, snapshots SnapshotSaver, audit AuditPort, advisory AdvisoryQueue, logger *slog.Logger, threshold float64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		projects:  projects,
		snapshots: snapshots,
		audit:     audit,
		advisory:  advisory,
		logger:    logger,
		threshold: threshold,
	}
}

// Threshold returns the purchase-request threshold in effect.
func (s *Service) Threshold() float64 { return s.threshold }

// Create validates and stores a new claim in Submitted state. The
// purchase-request flag is decided here, once, from the strict > threshold
// rule; later edits never revisit it.
func (s *Service) Create(ctx context.Context, req CreateExpenseRequest) (Expense, budget.Figures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projects.Get(req.ProjectID)
	if err != nil {
		return Expense{}, budget.Figures{}, err
	}
	if !p.AllowsCategory(req.Category) {
		return Expense{}, budget.Figures{}, fmt.Errorf("%w: %s on project %s", ErrCategoryNotAllowed, req.Category, p.ID)
	}

	items, total, err := buildItems(req.Items)
	if err != nil {
		return Expense{}, budget.Figures{}, err
	}
	if err := checkPaymentDetail(req.PaymentMethod, req.PayerName, req.VendorTaxID); err != nil {
		return Expense{}, budget.Figures{}, err
	}

	now := time.Now().UTC()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	e := Expense{
		ID:            uuid.NewString(),
		ProjectID:     req.ProjectID,
		Category:      req.Category,
		Date:          date,
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		TotalAmount:   total,
		Status:        StatusSubmitted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	setPaymentDetail(&e, req.PaymentMethod, req.PayerName, req.VendorTaxID)

	e.RequiresPurchaseRequest = total > s.threshold
	if e.RequiresPurchaseRequest {
		e.Notes = append(e.Notes, Note{
			At:    now,
			Actor: "system",
			Text:  fmt.Sprintf("Total %.0f exceeds %.0f: a purchase request form is required.", total, s.threshold),
		})
	}

	if err := s.store.Insert(e); err != nil {
		return Expense{}, budget.Figures{}, err
	}
	figures := s.reconcile(p)
	s.afterMutation(ctx, "EXPENSE_CREATE", e)

	if s.advisory != nil {
		if err := s.advisory.EnqueueAnalysis(ctx, e); err != nil {
			s.logger.Warn("enqueue advisory", slog.String("expense_id", e.ID), slog.Any("error", err))
		}
	}
	return e, figures, nil
}

// Transition moves a claim to the requested status. Illegal pairs fail with
// ErrInvalidTransition naming both states and leave the claim untouched.
func (s *Service) Transition(ctx context.Context, id string, to Status) (Expense, budget.Figures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.store.Get(id)
	if err != nil {
		return Expense{}, budget.Figures{}, err
	}
	if err := checkTransition(e.Status, to); err != nil {
		return Expense{}, budget.Figures{}, err
	}

	from := e.Status
	e.Status = to
	e.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(e); err != nil {
		return Expense{}, budget.Figures{}, err
	}

	figures, err := s.reconcileByID(e.ProjectID)
	if err != nil {
		return Expense{}, budget.Figures{}, err
	}
	s.afterMutation(ctx, "EXPENSE_TRANSITION", e)
	s.logger.Info("expense transition",
		slog.String("expense_id", e.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return e, figures, nil
}

// Edit changes item lines, category, project assignment or invoice fields.
// Item amounts and the claim total are recomputed; status and the
// purchase-request flag are left as they are.
func (s *Service) Edit(ctx context.Context, id string, req UpdateExpenseRequest) (Expense, budget.Figures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.store.Get(id)
	if err != nil {
		return Expense{}, budget.Figures{}, err
	}

	if req.ProjectID != nil {
		e.ProjectID = *req.ProjectID
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Date != nil {
		e.Date = *req.Date
	}
	if req.InvoiceNumber != nil {
		e.InvoiceNumber = strings.TrimSpace(*req.InvoiceNumber)
	}
	if req.PaymentMethod != nil {
		e.PaymentMethod = *req.PaymentMethod
	}

	payer := e.PayerName
	vendor := e.VendorTaxID
	if req.PayerName != nil {
		payer = *req.PayerName
	}
	if req.VendorTaxID != nil {
		vendor = *req.VendorTaxID
	}
	if err := checkPaymentDetail(e.PaymentMethod, payer, vendor); err != nil {
		return Expense{}, budget.Figures{}, err
	}
	setPaymentDetail(&e, e.PaymentMethod, payer, vendor)

	p, err := s.projects.Get(e.ProjectID)
	if err != nil {
		return Expense{}, budget.Figures{}, err
	}
	if !p.AllowsCategory(e.Category) {
		return Expense{}, budget.Figures{}, fmt.Errorf("%w: %s on project %s", ErrCategoryNotAllowed, e.Category, p.ID)
	}

	if req.Items != nil {
		items, total, err := buildItems(*req.Items)
		if err != nil {
			return Expense{}, budget.Figures{}, err
		}
		e.Items = items
		e.TotalAmount = total
	} else {
		// Re-derive even when lines did not change so a stored total can
		// never drift from its lines.
		e.Items, e.TotalAmount = recomputeItems(e.Items)
	}
	if e.TotalAmount <= 0 {
		return Expense{}, budget.Figures{}, fmt.Errorf("%w: got %.2f", ErrZeroAmount, e.TotalAmount)
	}

	e.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(e); err != nil {
		return Expense{}, budget.Figures{}, err
	}
	figures := s.reconcile(p)
	s.afterMutation(ctx, "EXPENSE_EDIT", e)
	return e, figures, nil
}

// Annotate appends a timestamped, attributed note. An empty note is a no-op
// and never an error.
func (s *Service) Annotate(ctx context.Context, id, text string) (Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.store.Get(id)
	if err != nil {
		return Expense{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return e, nil
	}

	e.Notes = append(e.Notes, Note{
		At:    time.Now().UTC(),
		Actor: shared.IdentityFromContext(ctx).Actor(),
		Text:  text,
	})
	e.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(e); err != nil {
		return Expense{}, err
	}
	s.afterMutation(ctx, "EXPENSE_NOTE", e)
	return e, nil
}

// Get returns one claim.
func (s *Service) Get(id string) (Expense, error) {
	return s.store.Get(id)
}

// List returns all claims in submission order.
func (s *Service) List() []Expense {
	return s.store.List()
}

// Restore seeds the store from a persisted snapshot at startup.
func (s *Service) Restore(claims []Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Restore(claims)
}

// FiguresFor reconciles the given project against the current claim set.
func (s *Service) FiguresFor(projectID string) (budget.Figures, error) {
	p, err := s.projects.Get(projectID)
	if err != nil {
		return budget.Figures{}, err
	}
	return s.reconcile(p), nil
}

// reconcileByID looks up the project and runs a full pass.
func (s *Service) reconcileByID(projectID string) (budget.Figures, error) {
	p, err := s.projects.Get(projectID)
	if err != nil {
		return budget.Figures{}, err
	}
	return s.reconcile(p), nil
}

// reconcile runs one complete pass over the project's claims plus its
// adjustment ledger.
func (s *Service) reconcile(p project.Project) budget.Figures {
	var claims []budget.Claim
	for _, e := range s.store.List() {
		if e.ProjectID != p.ID {
			continue
		}
		claims = append(claims, budget.Claim{
			Category: e.Category,
			Bucket:   e.Status.Bucket(),
			Amount:   e.TotalAmount,
		})
	}
	return budget.Reconcile(budget.Input{
		Budget:       p.Budget,
		Claims:       claims,
		Adjustments:  p.AdjustmentAmounts(),
		CategoryCaps: p.CategoryBudgets,
	})
}

// afterMutation persists the snapshot and records the audit entry. Both are
// collaborators outside the core: failures are logged, never escalated, and
// the in-memory store remains the source of truth.
func (s *Service) afterMutation(ctx context.Context, action string, e Expense) {
	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, s.store.List()); err != nil {
			s.logger.Warn("persist snapshot", slog.Any("error", err))
		}
	}
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			Actor:    shared.IdentityFromContext(ctx).Actor(),
			Action:   action,
			Entity:   "expense",
			EntityID: e.ID,
			Meta:     map[string]any{"project_id": e.ProjectID, "status": string(e.Status), "total": e.TotalAmount},
		})
		if err != nil {
			s.logger.Warn("record audit", slog.Any("error", err))
		}
	}
}

func buildItems(inputs []ItemInput) ([]InvoiceItem, float64, error) {
	items := make([]InvoiceItem, 0, len(inputs))
	var total float64
	for _, in := range inputs {
		if in.UnitPrice < 0 {
			return nil, 0, fmt.Errorf("expense: unit price must be non-negative")
		}
		if in.Quantity < 1 {
			return nil, 0, fmt.Errorf("expense: quantity must be at least 1")
		}
		amount := in.UnitPrice * float64(in.Quantity)
		items = append(items, InvoiceItem{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(in.Name),
			UnitPrice: in.UnitPrice,
			Quantity:  in.Quantity,
			Amount:    amount,
		})
		total += amount
	}
	if total <= 0 {
		return nil, 0, fmt.Errorf("%w: got %.2f", ErrZeroAmount, total)
	}
	return items, total, nil
}

// recomputeItems re-derives line amounts and the total from unit price and
// quantity, keeping line ids stable.
func recomputeItems(items []InvoiceItem) ([]InvoiceItem, float64) {
	out := make([]InvoiceItem, len(items))
	var total float64
	for i, item := range items {
		item.Amount = item.UnitPrice * float64(item.Quantity)
		out[i] = item
		total += item.Amount
	}
	return out, total
}

func checkPaymentDetail(method PaymentMethod, payer, vendor string) error {
	switch method {
	case PaymentAdvance:
		if strings.TrimSpace(payer) == "" {
			return fmt.Errorf("%w: payer name for advance payment", ErrPaymentDetail)
		}
	case PaymentDirect:
		if strings.TrimSpace(vendor) == "" {
			return fmt.Errorf("%w: vendor tax id for direct payment", ErrPaymentDetail)
		}
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrPaymentDetail, string(method))
	}
	return nil
}

// setPaymentDetail stores the active method's field and clears the inactive
// one; the two are mutually exclusive.
func setPaymentDetail(e *Expense, method PaymentMethod, payer, vendor string) {
	switch method {
	case PaymentAdvance:
		e.PayerName = strings.TrimSpace(payer)
		e.VendorTaxID = ""
	case PaymentDirect:
		e.VendorTaxID = strings.TrimSpace(vendor)
		e.PayerName = ""
	}
}
