package repository

import (
	"sync"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// CustomerRepo is the customer directory. Customers are keyed by their
// exact name; "Alice" and "alice" are two different customers.
type CustomerRepo struct {
	mu        sync.RWMutex
	customers []model.Customer
	index     map[string]struct{}
}

// NewCustomerRepo constructs an empty CustomerRepo.
func NewCustomerRepo() *CustomerRepo {
	return &CustomerRepo{index: make(map[string]struct{})}
}

// Ensure adds a customer named name unless one already exists. It reports
// whether a new entry was created.
func (r *CustomerRepo) Ensure(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[name]; ok {
		return false
	}
	r.index[name] = struct{}{}
	r.customers = append(r.customers, model.Customer{Name: name})
	return true
}

// List returns every customer in the order they first booked.
func (r *CustomerRepo) List() []model.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Customer, len(r.customers))
	copy(out, r.customers)
	return out
}
