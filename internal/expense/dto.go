package expense

import "time"

// ItemInput describes one invoice line on create/edit. The line amount is
// derived server-side and cannot be supplied.
type ItemInput struct {
	Name      string  `json:"name" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
}

// CreateExpenseRequest is the claim submission payload.
type CreateExpenseRequest struct {
	ProjectID     string        `json:"project_id" validate:"required"`
	Category      string        `json:"category" validate:"required"`
	Date          time.Time     `json:"date"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=ADVANCE DIRECT"`
	PayerName     string        `json:"payer_name,omitempty"`
	VendorTaxID   string        `json:"vendor_tax_id,omitempty"`
	Items         []ItemInput   `json:"items" validate:"required,min=1,dive"`
}

// UpdateExpenseRequest edits an existing claim. Only the provided fields
// change; status and the purchase-request flag are never touched by edits.
type UpdateExpenseRequest struct {
	ProjectID     *string        `json:"project_id,omitempty"`
	Category      *string        `json:"category,omitempty"`
	Date          *time.Time     `json:"date,omitempty"`
	InvoiceNumber *string        `json:"invoice_number,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=ADVANCE DIRECT"`
	PayerName     *string        `json:"payer_name,omitempty"`
	VendorTaxID   *string        `json:"vendor_tax_id,omitempty"`
	Items         *[]ItemInput   `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// TransitionRequest asks for a status change.
type TransitionRequest struct {
	Status Status `json:"status" validate:"required"`
}

// NoteRequest appends an annotation. An empty text is accepted and ignored.
type NoteRequest struct {
	Text string `json:"text"`
}
