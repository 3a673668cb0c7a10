// Package cardsets exposes the module version and a backend factory that
// picks the Catalog implementation named in a Config.
package cardsets

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/cardsets/internal/memory"
	"github.com/mesh-intelligence/cardsets/pkg/sqlite"
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// Version is the released version of the cardsets module and CLI.
const Version = "0.1.0"

// Open creates the backend named by config.Backend and attaches it.
// The caller must Detach the returned Catalog.
func Open(config types.Config, logger *zap.Logger) (types.Catalog, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var catalog types.Catalog
	switch config.Backend {
	case types.BackendMemory:
		catalog = memory.NewBackend()
	default:
		catalog = sqlite.NewBackend(logger)
	}

	if err := catalog.Attach(config); err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", config.Backend, err)
	}
	return catalog, nil
}
