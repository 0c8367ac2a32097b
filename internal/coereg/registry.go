// Package coereg implements the Check Contract & Registry: a static table
// mapping (category, check id) to a run function and weight, built once
// at startup and immutable thereafter.
package coereg

import (
	"sort"
	"sync"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
	"github.com/fabriziosalmi/repolizer/internal/coeerr"
)

// Registry holds every registered CheckDescriptor, grouped by category.
// It is built once and then shared read-only by every worker.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]coecore.CheckDescriptor
	order []string // check ids, sorted (category, id) for stable iteration
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{byID: make(map[string]coecore.CheckDescriptor)}
}

// MustRegister registers descriptor, or panics if its run function is nil
// or its category is not one of coecore.FixedCategories. A missing or
// malformed check must fail fatally at startup, so callers should invoke
// this only during program initialization, where a panic surfaces as a
// startup crash, not a runtime error affecting in-flight work.
func (r *Registry) MustRegister(d coecore.CheckDescriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Register adds d to the registry. It returns a *coeerr.RegistryError when
// d is malformed (nil run function, unknown category, non-positive
// weight, or a duplicate id) rather than registering it.
func (r *Registry) Register(d coecore.CheckDescriptor) error {
	if d.ID == "" {
		return coeerr.NewRegistryError("register", d.ID, errEmptyID)
	}
	if !coecore.ValidCategory(d.Category) {
		return coeerr.NewRegistryError("register", d.ID, errUnknownCategory)
	}
	if d.Weight <= 0 {
		return coeerr.NewRegistryError("register", d.ID, errNonPositiveWeight)
	}
	if d.Run == nil {
		return coeerr.NewRegistryError("register", d.ID, errNilRunFunc)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; exists {
		return coeerr.NewRegistryError("register", d.ID, errDuplicateID)
	}

	r.byID[d.ID] = d
	r.order = append(r.order, d.ID)
	sort.Slice(r.order, func(i, j int) bool {
		a, b := r.byID[r.order[i]], r.byID[r.order[j]]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.ID < b.ID
	})

	return nil
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (coecore.CheckDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

// ByCategory returns every descriptor in category, in stable (category,id)
// order.
func (r *Registry) ByCategory(category string) []coecore.CheckDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []coecore.CheckDescriptor
	for _, id := range r.order {
		d := r.byID[id]
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// All returns every descriptor in stable (category, id) order.
func (r *Registry) All() []coecore.CheckDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]coecore.CheckDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Categories returns the fixed category set that have at least one
// registered check, in FixedCategories order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	present := make(map[string]bool)
	for _, id := range r.order {
		present[r.byID[id].Category] = true
	}

	var out []string
	for _, c := range coecore.FixedCategories {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}

// Stats summarizes registry contents.
type Stats struct {
	TotalChecks int
	ByCategory  map[string]int
}

// Stats returns registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{TotalChecks: len(r.byID), ByCategory: make(map[string]int)}
	for _, d := range r.byID {
		s.ByCategory[d.Category]++
	}
	return s
}
