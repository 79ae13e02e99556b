// Package project owns the project registry: budget-holding units with an
// allocation, allowed categories, optional per-category caps and a manual
// adjustment ledger.
package project

import (
	"errors"
	"time"
)

// Type classifies a project; it governs advisory rules only and is never
// enforced mechanically beyond the category allow-list.
type Type string

const (
	TypeGrant      Type = "GRANT"
	TypeIndustry   Type = "INDUSTRY"
	TypeDepartment Type = "DEPARTMENT"
)

// TypeLabels maps the stable identifier to a display label. Lookups and
// comparisons always use the identifier, never the label.
var TypeLabels = map[Type]string{
	TypeGrant:      "Research Grant",
	TypeIndustry:   "Industry Partnership",
	TypeDepartment: "Department Funds",
}

// BudgetAdjustment is an out-of-band correction to a project's spent total.
// Entries are immutable once appended; corrections are made with a new
// offsetting entry, never by editing or deleting.
type BudgetAdjustment struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Reason string    `json:"reason"`
	User   string    `json:"user"`
}

// Project is a budget-holding unit. The derived figures (spent, pending,
// remaining) are never stored on the struct; callers obtain them from a
// reconciliation pass.
type Project struct {
	ID                string             `json:"id"`
	Code              string             `json:"code"`
	Name              string             `json:"name"`
	Type              Type               `json:"type"`
	Budget            float64            `json:"budget"`
	CategoryBudgets   map[string]float64 `json:"category_budgets,omitempty"`
	AllowedCategories []string           `json:"allowed_categories"`
	Adjustments       []BudgetAdjustment `json:"adjustments"`
}

// AllowsCategory reports whether claims in the given category may be filed
// against this project.
func (p Project) AllowsCategory(category string) bool {
	for _, c := range p.AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// AdjustmentAmounts returns the signed ledger amounts in append order.
func (p Project) AdjustmentAmounts() []float64 {
	if len(p.Adjustments) == 0 {
		return nil
	}
	amounts := make([]float64, len(p.Adjustments))
	for i, adj := range p.Adjustments {
		amounts[i] = adj.Amount
	}
	return amounts
}

var (
	// ErrNotFound indicates an unresolved project reference.
	ErrNotFound = errors.New("project: not found")
	// ErrInvalidAdjustment indicates a zero amount or empty reason.
	ErrInvalidAdjustment = errors.New("project: invalid adjustment")
	// ErrDuplicate indicates an id or code collision on registration.
	ErrDuplicate = errors.New("project: duplicate")
)
