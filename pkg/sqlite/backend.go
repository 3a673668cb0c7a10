// Package sqlite provides the public API for the SQLite Catalog backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/cardsets/internal/sqlite"
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// NewBackend creates a new SQLite backend instance that logs through logger
// (nil disables logging). The backend is not attached; call Attach with a
// Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend(nil)
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".cardsets-db",
//	})
//	defer backend.Detach()
func NewBackend(logger *zap.Logger) types.Catalog {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}
