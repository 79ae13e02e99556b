package project

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry exclusively owns the project collection. Mutations are serialised
// behind a mutex so reconciliation inputs never tear when the HTTP layer
// calls in concurrently.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	projects map[string]*Project
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{projects: make(map[string]*Project)}
}

// Register adds a project. IDs and accounting codes must be unique.
func (r *Registry) Register(p Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("project: code required")
	}
	if p.Budget < 0 {
		return fmt.Errorf("project: budget must be non-negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; ok {
		return fmt.Errorf("%w: id %s", ErrDuplicate, p.ID)
	}
	for _, existing := range r.projects {
		if existing.Code == p.Code {
			return fmt.Errorf("%w: code %s", ErrDuplicate, p.Code)
		}
	}
	stored := p
	stored.Adjustments = append([]BudgetAdjustment(nil), p.Adjustments...)
	r.projects[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	return nil
}

// Get returns a copy of the project with the given id.
func (r *Registry) Get(id string) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneProject(p), nil
}

// List returns copies of all projects in registration order.
func (r *Registry) List() []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneProject(r.projects[id]))
	}
	return out
}

// Len reports the number of registered projects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects)
}

// AppendAdjustment validates and appends a manual ledger entry. The ledger
// is append-only: entries are never mutated or removed afterwards.
func (r *Registry) AppendAdjustment(projectID string, amount float64, reason, user string) (BudgetAdjustment, error) {
	if amount == 0 {
		return BudgetAdjustment{}, fmt.Errorf("%w: amount must be non-zero", ErrInvalidAdjustment)
	}
	if strings.TrimSpace(reason) == "" {
		return BudgetAdjustment{}, fmt.Errorf("%w: reason required", ErrInvalidAdjustment)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return BudgetAdjustment{}, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	adj := BudgetAdjustment{
		ID:     uuid.NewString(),
		Date:   time.Now().UTC(),
		Amount: amount,
		Reason: strings.TrimSpace(reason),
		User:   user,
	}
	p.Adjustments = append(p.Adjustments, adj)
	return adj, nil
}

func cloneProject(p *Project) Project {
	out := *p
	out.Adjustments = append([]BudgetAdjustment(nil), p.Adjustments...)
	out.AllowedCategories = append([]string(nil), p.AllowedCategories...)
	if p.CategoryBudgets != nil {
		caps := make(map[string]float64, len(p.CategoryBudgets))
		for k, v := range p.CategoryBudgets {
			caps[k] = v
		}
		out.CategoryBudgets = caps
	}
	return out
}
