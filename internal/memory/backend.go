// Package memory implements an in-process Catalog backend. Card sets live in
// a map keyed by name; nothing is persisted. It backs unit tests and the
// "memory" backend setting.
package memory

import (
	"sync"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

var _ types.Catalog = (*Backend)(nil)

// Backend implements the Catalog interface over an in-memory map.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	sets     state
}

// NewBackend creates a new memory backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// CardSets returns the card-set table.
// Returns ErrCatalogDetached if the backend is not attached.
func (b *Backend) CardSets() (types.CardSetTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCatalogDetached
	}
	return &table{backend: b}, nil
}

// Attach validates the config and starts with an empty store.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	b.sets = make(state)
	b.attached = true
	return nil
}

// Detach drops all card sets. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	b.sets = nil
	return nil
}
