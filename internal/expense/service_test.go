package expense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccube-expense/ccube-expense/internal/project"
	"github.com/ccube-expense/ccube-expense/internal/shared"
)

type recordingSnapshots struct {
	saves int
	last  []Expense
}

func (r *recordingSnapshots) Save(_ context.Context, claims []Expense) error {
	r.saves++
	r.last = claims
	return nil
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (r *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

type recordingQueue struct {
	enqueued []Expense
}

func (r *recordingQueue) EnqueueAnalysis(_ context.Context, claim Expense) error {
	r.enqueued = append(r.enqueued, claim)
	return nil
}

type fixture struct {
	service   *Service
	registry  *project.Registry
	snapshots *recordingSnapshots
	audit     *recordingAudit
	queue     *recordingQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	registry := project.NewRegistry()
	require.NoError(t, registry.Register(project.Project{
		ID:                "p1",
		Code:              "113-0001",
		Name:              "Test Grant",
		Type:              project.TypeGrant,
		Budget:            10000,
		AllowedCategories: []string{"office", "travel"},
	}))

	snapshots := &recordingSnapshots{}
	audit := &recordingAudit{}
	queue := &recordingQueue{}
	service := NewService(NewStore(), registry, snapshots, audit, queue, nil, 15000)
	return &fixture{service: service, registry: registry, snapshots: snapshots, audit: audit, queue: queue}
}

func advanceClaim(amount float64) CreateExpenseRequest {
	return CreateExpenseRequest{
		ProjectID:     "p1",
		Category:      "office",
		PaymentMethod: PaymentAdvance,
		PayerName:     "Research Assistant",
		Items:         []ItemInput{{Name: "toner", UnitPrice: amount, Quantity: 1}},
	}
}

func TestCreateClaim(t *testing.T) {
	f := newFixture(t)

	e, figures, err := f.service.Create(context.Background(), advanceClaim(3000))
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)
	require.Equal(t, StatusSubmitted, e.Status)
	require.Equal(t, 3000.0, e.TotalAmount)
	require.False(t, e.RequiresPurchaseRequest)
	require.Empty(t, e.Notes)

	// Submitted claims reserve nothing.
	require.Equal(t, 0.0, figures.Spent)
	require.Equal(t, 0.0, figures.Pending)
	require.Equal(t, 10000.0, figures.Remaining)

	require.Equal(t, 1, f.snapshots.saves)
	require.Len(t, f.queue.enqueued, 1)
	require.Len(t, f.audit.logs, 1)
	require.Equal(t, "EXPENSE_CREATE", f.audit.logs[0].Action)
}

func TestCreateClaimProjectNotFound(t *testing.T) {
	f := newFixture(t)

	req := advanceClaim(3000)
	req.ProjectID = "missing"
	_, _, err := f.service.Create(context.Background(), req)
	require.ErrorIs(t, err, project.ErrNotFound)
	require.Empty(t, f.service.List())
	require.Zero(t, f.snapshots.saves)
}

func TestCreateClaimCategoryNotAllowed(t *testing.T) {
	f := newFixture(t)

	req := advanceClaim(3000)
	req.Category = "meal"
	_, _, err := f.service.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrCategoryNotAllowed)
	require.Empty(t, f.service.List())
}

func TestCreateClaimZeroAmount(t *testing.T) {
	f := newFixture(t)

	req := advanceClaim(0)
	_, _, err := f.service.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrZeroAmount)
	require.Empty(t, f.service.List())
}

func TestCreateClaimPaymentDetail(t *testing.T) {
	f := newFixture(t)

	req := advanceClaim(3000)
	req.PayerName = ""
	_, _, err := f.service.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrPaymentDetail)

	req = advanceClaim(3000)
	req.PaymentMethod = PaymentDirect
	req.PayerName = ""
	_, _, err = f.service.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrPaymentDetail)

	req.VendorTaxID = "12345678"
	e, _, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	// The inactive method field stays cleared.
	require.Empty(t, e.PayerName)
	require.Equal(t, "12345678", e.VendorTaxID)
}

func TestThresholdBoundaryIsStrict(t *testing.T) {
	f := newFixture(t)

	at, _, err := f.service.Create(context.Background(), advanceClaim(15000))
	require.NoError(t, err)
	require.False(t, at.RequiresPurchaseRequest)
	require.Empty(t, at.Notes)

	above, _, err := f.service.Create(context.Background(), advanceClaim(15001))
	require.NoError(t, err)
	require.True(t, above.RequiresPurchaseRequest)
	require.Len(t, above.Notes, 1)
	require.Equal(t, "system", above.Notes[0].Actor)
}

func TestItemAmountsAreDerived(t *testing.T) {
	f := newFixture(t)

	req := advanceClaim(0)
	req.Items = []ItemInput{
		{Name: "paper", UnitPrice: 120, Quantity: 3},
		{Name: "pens", UnitPrice: 25, Quantity: 4},
	}
	e, _, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 360.0, e.Items[0].Amount)
	require.Equal(t, 100.0, e.Items[1].Amount)
	require.Equal(t, 460.0, e.TotalAmount)
}

func TestLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, e.Status)

	e, figures, err := f.service.Transition(ctx, e.ID, StatusCompanyApproved)
	require.NoError(t, err)
	require.Equal(t, 3000.0, figures.Pending)
	require.Equal(t, 0.0, figures.Spent)
	require.Equal(t, 7000.0, figures.Remaining)

	// Logging with the school keeps the claim in the pending bucket.
	e, figures, err = f.service.Transition(ctx, e.ID, StatusSchoolLogged)
	require.NoError(t, err)
	require.Equal(t, 3000.0, figures.Pending)
	require.Equal(t, 0.0, figures.Spent)
	require.Equal(t, 7000.0, figures.Remaining)

	e, figures, err = f.service.Transition(ctx, e.ID, StatusSchoolApproved)
	require.NoError(t, err)
	require.Equal(t, 0.0, figures.Pending)
	require.Equal(t, 3000.0, figures.Spent)
	require.Equal(t, 7000.0, figures.Remaining)

	_, figures, err = f.service.Transition(ctx, e.ID, StatusSchoolPaid)
	require.NoError(t, err)
	require.Equal(t, 0.0, figures.Pending)
	require.Equal(t, 3000.0, figures.Spent)
	require.Equal(t, 7000.0, figures.Remaining)
}

func TestInvalidTransitionLeavesClaimUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)

	_, _, err = f.service.Transition(ctx, e.ID, StatusSchoolPaid)
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.service.Get(e.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, got.Status)
}

func TestTransitionUnknownClaim(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.service.Transition(context.Background(), "missing", StatusCompanyApproved)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRejectionRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)

	_, figures, err := f.service.Transition(ctx, created.ID, StatusRejected)
	require.NoError(t, err)
	// Rejected claims contribute to neither bucket.
	require.Equal(t, 0.0, figures.Pending)
	require.Equal(t, 0.0, figures.Spent)

	resubmitted, _, err := f.service.Transition(ctx, created.ID, StatusSubmitted)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, resubmitted.Status)
	require.Equal(t, created.TotalAmount, resubmitted.TotalAmount)
	require.Equal(t, created.Items, resubmitted.Items)
	require.Equal(t, created.Category, resubmitted.Category)
}

func TestEditRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)

	items := []ItemInput{{Name: "train ticket", UnitPrice: 700, Quantity: 2}}
	category := "travel"
	updated, figures, err := f.service.Edit(ctx, e.ID, UpdateExpenseRequest{
		Category: &category,
		Items:    &items,
	})
	require.NoError(t, err)
	require.Equal(t, "travel", updated.Category)
	require.Equal(t, 1400.0, updated.TotalAmount)
	require.Equal(t, StatusSubmitted, updated.Status)
	require.Equal(t, 10000.0, figures.Remaining)
}

func TestEditDoesNotRecomputeThresholdFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)
	require.False(t, e.RequiresPurchaseRequest)

	items := []ItemInput{{Name: "server", UnitPrice: 20000, Quantity: 1}}
	updated, _, err := f.service.Edit(ctx, e.ID, UpdateExpenseRequest{Items: &items})
	require.NoError(t, err)
	require.Equal(t, 20000.0, updated.TotalAmount)
	// Frozen at creation even though the new total crosses the threshold.
	require.False(t, updated.RequiresPurchaseRequest)
}

func TestEditValidatesTargetProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.registry.Register(project.Project{
		ID:                "p2",
		Code:              "113-0002",
		Name:              "Meals Only",
		Type:              project.TypeDepartment,
		Budget:            5000,
		AllowedCategories: []string{"meal"},
	}))

	e, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)

	// Reassigning to a project that does not allow the category fails.
	target := "p2"
	_, _, err = f.service.Edit(ctx, e.ID, UpdateExpenseRequest{ProjectID: &target})
	require.ErrorIs(t, err, ErrCategoryNotAllowed)

	missing := "nope"
	_, _, err = f.service.Edit(ctx, e.ID, UpdateExpenseRequest{ProjectID: &missing})
	require.ErrorIs(t, err, project.ErrNotFound)
}

func TestAnnotate(t *testing.T) {
	f := newFixture(t)
	ctx := shared.ContextWithIdentity(context.Background(), shared.Identity{Name: "reviewer", Admin: true})

	e, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)

	annotated, err := f.service.Annotate(ctx, e.ID, "receipt verified")
	require.NoError(t, err)
	require.Len(t, annotated.Notes, 1)
	require.Equal(t, "admin:reviewer", annotated.Notes[0].Actor)
	require.Equal(t, "receipt verified", annotated.Notes[0].Text)
	require.False(t, annotated.Notes[0].At.IsZero())

	// An empty note is accepted as a no-op.
	unchanged, err := f.service.Annotate(ctx, e.ID, "   ")
	require.NoError(t, err)
	require.Len(t, unchanged.Notes, 1)
}

func TestAnnotateAnonymousIsNotSystem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Above the threshold, so the claim carries a system-written note.
	e, _, err := f.service.Create(ctx, advanceClaim(15001))
	require.NoError(t, err)
	require.Len(t, e.Notes, 1)
	require.Equal(t, "system", e.Notes[0].Actor)

	annotated, err := f.service.Annotate(ctx, e.ID, "receipt attached")
	require.NoError(t, err)
	require.Len(t, annotated.Notes, 2)
	require.Equal(t, "user", annotated.Notes[1].Actor)
	require.NotEqual(t, annotated.Notes[0].Actor, annotated.Notes[1].Actor)
}

func TestAdjustmentsFlowIntoFigures(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.AppendAdjustment("p1", 5000, "prior-year correction", "admin")
	require.NoError(t, err)

	figures, err := f.service.FiguresFor("p1")
	require.NoError(t, err)
	require.Equal(t, 5000.0, figures.Spent)
	require.Equal(t, 5000.0, figures.Remaining)

	_, err = f.registry.AppendAdjustment("p1", -2000, "vendor refund", "admin")
	require.NoError(t, err)

	figures, err = f.service.FiguresFor("p1")
	require.NoError(t, err)
	require.Equal(t, 3000.0, figures.Spent)
	require.Equal(t, 7000.0, figures.Remaining)
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _, err := f.service.Create(ctx, advanceClaim(3000))
	require.NoError(t, err)
	second, _, err := f.service.Create(ctx, advanceClaim(200))
	require.NoError(t, err)

	// Simulate a restart from the last persisted snapshot.
	restored := newFixture(t)
	restored.service.Restore(f.snapshots.last)

	claims := restored.service.List()
	require.Len(t, claims, 2)
	require.Equal(t, first.ID, claims[0].ID)
	require.Equal(t, second.ID, claims[1].ID)

	figures, err := restored.service.FiguresFor("p1")
	require.NoError(t, err)
	require.Equal(t, 10000.0, figures.Remaining)
}
