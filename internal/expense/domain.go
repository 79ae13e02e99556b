// Package expense owns the reimbursement claim collection: the claim
// lifecycle state machine plus create, edit and annotate operations.
package expense

import (
	"errors"
	"time"

	"github.com/ccube-expense/ccube-expense/internal/budget"
)

// Status enumerates claim lifecycle states. The values are stable
// identifiers; display text lives in StatusLabels so transition lookups
// never depend on localised strings.
type Status string

const (
	StatusSubmitted       Status = "SUBMITTED"
	StatusCompanyApproved Status = "COMPANY_APPROVED"
	StatusSchoolLogged    Status = "SCHOOL_LOGGED"
	StatusSchoolApproved  Status = "SCHOOL_APPROVED"
	StatusSchoolPaid      Status = "SCHOOL_PAID"
	StatusRejected        Status = "REJECTED"
)

// StatusLabels maps statuses to display labels.
var StatusLabels = map[Status]string{
	StatusSubmitted:       "Submitted (awaiting review)",
	StatusCompanyApproved: "Company approved (reserved)",
	StatusSchoolLogged:    "Logged with school (in transit)",
	StatusSchoolApproved:  "School approved (deducted)",
	StatusSchoolPaid:      "School paid (closed)",
	StatusRejected:        "Returned / needs documents",
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := StatusLabels[s]
	return ok
}

// Bucket maps a status onto its budget bucket. Company-approved and logged
// claims reserve budget; school-approved and paid claims consume it;
// submitted and rejected claims count in neither.
func (s Status) Bucket() budget.Bucket {
	switch s {
	case StatusCompanyApproved, StatusSchoolLogged:
		return budget.BucketPending
	case StatusSchoolApproved, StatusSchoolPaid:
		return budget.BucketSpent
	default:
		return budget.BucketNone
	}
}

// PaymentMethod enumerates how a claim is paid out.
type PaymentMethod string

const (
	// PaymentAdvance reimburses the employee who paid first.
	PaymentAdvance PaymentMethod = "ADVANCE"
	// PaymentDirect pays the vendor directly.
	PaymentDirect PaymentMethod = "DIRECT"
)

// InvoiceItem is one line of a claim. Amount is always UnitPrice times
// Quantity, recomputed on every edit and never settable independently.
type InvoiceItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
}

// Note is one append-only annotation on a claim.
type Note struct {
	At    time.Time `json:"at"`
	Actor string    `json:"actor"`
	Text  string    `json:"text"`
}

// Expense is a single reimbursement claim tied to one project and category.
type Expense struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"project_id"`
	Category      string        `json:"category"`
	Date          time.Time     `json:"date"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PayerName     string        `json:"payer_name,omitempty"`
	VendorTaxID   string        `json:"vendor_tax_id,omitempty"`
	Items         []InvoiceItem `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	Status        Status        `json:"status"`
	Notes         []Note        `json:"notes"`
	// RequiresPurchaseRequest is set once at creation from the threshold
	// rule and frozen afterwards, even if later edits cross the threshold.
	RequiresPurchaseRequest bool      `json:"requires_purchase_request"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates an unresolved claim id.
	ErrNotFound = errors.New("expense: not found")
	// ErrCategoryNotAllowed indicates the category is outside the owning
	// project's allow-list.
	ErrCategoryNotAllowed = errors.New("expense: category not allowed for project")
	// ErrZeroAmount indicates a computed total of zero or less.
	ErrZeroAmount = errors.New("expense: total amount must be positive")
	// ErrInvalidTransition indicates the requested status is not reachable
	// from the current one.
	ErrInvalidTransition = errors.New("expense: invalid status transition")
	// ErrPaymentDetail indicates a missing method-specific field.
	ErrPaymentDetail = errors.New("expense: payment detail required")
)
