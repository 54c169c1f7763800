package schema

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/confflow/internal/ir"
)

// ErrDuplicateSchema is returned when a schema name is registered twice.
var ErrDuplicateSchema = errors.New("duplicate schema")

// Registry holds the declared schemas in registration order.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []ir.Identifier
	schemas map[ir.Identifier]*Schema
}

// NewRegistry creates a registry holding schemas. It fails on the first
// duplicate name.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[ir.Identifier]*Schema)}
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a schema.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return errors.New("nil schema")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.Name]; exists {
		return fmt.Errorf("%w %q", ErrDuplicateSchema, s.Name)
	}
	r.schemas[s.Name] = s
	r.order = append(r.order, s.Name)
	return nil
}

// Contains reports whether a schema named id is registered.
func (r *Registry) Contains(id ir.Identifier) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[id]
	return ok
}

// Get returns the schema named id.
func (r *Registry) Get(id ir.Identifier) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[id]
	return s, ok
}

// Names returns the schema names in registration order.
func (r *Registry) Names() []ir.Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ir.Identifier, len(r.order))
	copy(out, r.order)
	return out
}

// Schemas returns the schemas in registration order.
func (r *Registry) Schemas() []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Schema, len(r.order))
	for i, id := range r.order {
		out[i] = r.schemas[id]
	}
	return out
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
