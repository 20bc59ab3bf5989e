package shipper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping carriers.
type Registry struct {
	shippers map[string]Shipper
	mu       sync.RWMutex
}

// NewRegistry creates a new shipper registry.
func NewRegistry() *Registry {
	return &Registry{
		shippers: make(map[string]Shipper),
	}
}

// Register adds a shipper to the registry.
func (r *Registry) Register(s Shipper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shippers[s.Name()] = s
}

// Get returns a shipper by name.
func (r *Registry) Get(name string) (Shipper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.shippers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// Names returns the sorted names of all registered shippers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.shippers))
	for name := range r.shippers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered shippers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shippers)
}

// CreateShipments submits independent orders to one carrier in parallel,
// running at most limit calls at once (limit <= 0 means unbounded).
// A failed order does not stop the others; each result carries its own error.
func (r *Registry) CreateShipments(ctx context.Context, carrier string, orders []Order, limit int) ([]ShipmentResult, error) {
	s, err := r.Get(carrier)
	if err != nil {
		return nil, err
	}

	results := make([]ShipmentResult, len(orders))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, order := range orders {
		g.Go(func() error {
			tracking, err := s.CreateShipment(ctx, order)
			results[i] = ShipmentResult{Index: i, TrackingNumber: tracking, Err: err}
			return nil
		})
	}

	g.Wait()
	return results, nil
}
