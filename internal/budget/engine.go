// Package budget derives project budget figures from the claim set and the
// manual adjustment ledger. All functions are pure: figures are recomputed
// from scratch on every call and never patched incrementally.
package budget

import (
	"math"
	"sort"
)

// Bucket classifies how a claim counts against a project budget.
type Bucket int

const (
	// BucketNone means the claim reserves nothing (submitted or rejected).
	BucketNone Bucket = iota
	// BucketPending means the amount is reserved but not yet consumed.
	BucketPending
	// BucketSpent means the amount has been consumed.
	BucketSpent
)

// Claim is the reconciler's view of one expense claim.
type Claim struct {
	Category string
	Bucket   Bucket
	Amount   float64
}

// Input carries everything a reconciliation pass needs for one project.
type Input struct {
	Budget      float64
	Claims      []Claim
	Adjustments []float64
	// CategoryCaps maps category id to an optional cap. Zero or absent
	// means unlimited.
	CategoryCaps map[string]float64
}

// CategoryFigures reports per-category spend against an optional cap.
type CategoryFigures struct {
	Category string  `json:"category"`
	Spent    float64 `json:"spent"`
	Pending  float64 `json:"pending"`
	Cap      float64 `json:"cap,omitempty"`
	// OverCap is informational only; nothing blocks claims on it.
	OverCap bool `json:"over_cap"`
}

// Figures is the result of one reconciliation pass.
type Figures struct {
	Budget     float64           `json:"budget"`
	Spent      float64           `json:"spent"`
	Pending    float64           `json:"pending"`
	Remaining  float64           `json:"remaining"`
	Categories []CategoryFigures `json:"categories,omitempty"`
}

// Reconcile computes {spent, pending, remaining} for one project.
//
// Spent = claims in the spent bucket plus the signed manual adjustments;
// pending = claims in the pending bucket; remaining = budget - spent -
// pending. Remaining may go negative: over-budget is a valid state surfaced
// to callers, never clamped here.
func Reconcile(in Input) Figures {
	var expenseSpent, expensePending float64
	perCategory := make(map[string]*CategoryFigures)

	for _, c := range in.Claims {
		switch c.Bucket {
		case BucketSpent:
			expenseSpent += c.Amount
			categoryEntry(perCategory, c.Category).Spent += c.Amount
		case BucketPending:
			expensePending += c.Amount
			categoryEntry(perCategory, c.Category).Pending += c.Amount
		}
	}

	var manualSpent float64
	for _, amount := range in.Adjustments {
		manualSpent += amount
	}

	spent := round2(expenseSpent + manualSpent)
	pending := round2(expensePending)

	figures := Figures{
		Budget:    in.Budget,
		Spent:     spent,
		Pending:   pending,
		Remaining: round2(in.Budget - spent - pending),
	}
	figures.Categories = categoryRows(perCategory, in.CategoryCaps)
	return figures
}

func categoryEntry(m map[string]*CategoryFigures, category string) *CategoryFigures {
	entry, ok := m[category]
	if !ok {
		entry = &CategoryFigures{Category: category}
		m[category] = entry
	}
	return entry
}

// categoryRows flattens the per-category totals, applies caps and returns
// rows in a stable order so repeated passes are byte-identical.
func categoryRows(m map[string]*CategoryFigures, caps map[string]float64) []CategoryFigures {
	if len(m) == 0 && len(caps) == 0 {
		return nil
	}
	for category, limit := range caps {
		if limit > 0 {
			categoryEntry(m, category)
		}
	}
	rows := make([]CategoryFigures, 0, len(m))
	for _, entry := range m {
		row := *entry
		row.Spent = round2(row.Spent)
		row.Pending = round2(row.Pending)
		if limit, ok := caps[row.Category]; ok && limit > 0 {
			row.Cap = limit
			row.OverCap = row.Spent+row.Pending > limit
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows
}

// Totals aggregates figures across projects for the dashboard.
type Totals struct {
	Budget      float64 `json:"budget"`
	Spent       float64 `json:"spent"`
	Pending     float64 `json:"pending"`
	Remaining   float64 `json:"remaining"`
	Utilization int     `json:"utilization_pct"`
}

// Sum combines per-project figures into overall totals. Utilization is the
// consumed-plus-reserved share of the overall budget in whole percent.
func Sum(all []Figures) Totals {
	var t Totals
	for _, f := range all {
		t.Budget += f.Budget
		t.Spent += f.Spent
		t.Pending += f.Pending
	}
	t.Budget = round2(t.Budget)
	t.Spent = round2(t.Spent)
	t.Pending = round2(t.Pending)
	t.Remaining = round2(t.Budget - t.Spent - t.Pending)
	if t.Budget > 0 {
		t.Utilization = int(math.Round((t.Spent + t.Pending) / t.Budget * 100))
	}
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
