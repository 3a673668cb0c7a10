package types

import "errors"

// Catalog defines the interface for backend-agnostic card-set storage.
// Callers attach to a backend, obtain the card-set table, and detach when done.
type Catalog interface {
	// CardSets returns the card-set table.
	// Returns ErrCatalogDetached if the catalog is not attached.
	CardSets() (CardSetTable, error)

	// Attach connects the Catalog to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on tables return ErrCatalogDetached.
	Detach() error
}

// Catalog lifecycle errors.
var (
	ErrCatalogDetached = errors.New("catalog is detached")
	ErrAlreadyAttached = errors.New("catalog is already attached")
)
