package expense

import (
	"fmt"
	"sync"
)

// Store exclusively owns the ordered claim collection. It is a process-local
// snapshot store: reads return deep copies and the full set can be swapped
// in from persistence at startup. Validation and lifecycle rules live in
// Service; the store only guards structural integrity.
type Store struct {
	mu     sync.RWMutex
	order  []string
	claims map[string]*Expense
}

// NewStore returns an empty claim store.
func NewStore() *Store {
	return &Store{claims: make(map[string]*Expense)}
}

// Insert adds a new claim. The id must be unique.
func (s *Store) Insert(e Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[e.ID]; ok {
		return fmt.Errorf("expense: duplicate id %s", e.ID)
	}
	stored := cloneExpense(e)
	s.claims[e.ID] = &stored
	s.order = append(s.order, e.ID)
	return nil
}

// Get returns a copy of the claim with the given id.
func (s *Store) Get(id string) (Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.claims[id]
	if !ok {
		return Expense{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneExpense(*e), nil
}

// List returns copies of all claims in submission order.
func (s *Store) List() []Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneExpense(*s.claims[id]))
	}
	return out
}

// Update replaces the stored claim with the given one. The claim must
// already exist; submission order is preserved.
func (s *Store) Update(e Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[e.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, e.ID)
	}
	stored := cloneExpense(e)
	s.claims[e.ID] = &stored
	return nil
}

// Restore swaps in a full claim set loaded from persistence, replacing
// whatever the store currently holds.
func (s *Store) Restore(claims []Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = make([]string, 0, len(claims))
	s.claims = make(map[string]*Expense, len(claims))
	for _, e := range claims {
		if _, ok := s.claims[e.ID]; ok {
			continue
		}
		stored := cloneExpense(e)
		s.claims[e.ID] = &stored
		s.order = append(s.order, e.ID)
	}
}

func cloneExpense(e Expense) Expense {
	out := e
	out.Items = append([]InvoiceItem(nil), e.Items...)
	out.Notes = append([]Note(nil), e.Notes...)
	return out
}
