package types

import "errors"

// Filter selects card sets in CardSetTable.Fetch. Supported keys:
//
//	"parent"  string  card sets whose parent has this name ("" selects roots)
//	"in_use"  bool    card sets with the given in-use flag
type Filter map[string]any

// Filter keys understood by every backend.
const (
	FilterParent = "parent"
	FilterInUse  = "in_use"
)

// CardSetTable is the keyed store the tree service runs over. Records are
// addressed by their unique name.
type CardSetTable interface {
	// Get retrieves the card set with the given name.
	// Returns ErrNotFound if no card set has that name.
	Get(name string) (*CardSet, error)

	// Create persists a new card set. The name is normalized in place and a
	// UUID v7 CardSetID is assigned. Returns ErrDuplicateName if the name is
	// taken and ErrNotFound if the named parent does not exist.
	Create(cs *CardSet) error

	// Update persists the descriptive fields (author, comment, annotations,
	// in-use flag) of an existing card set. Parent and name are not touched.
	Update(cs *CardSet) error

	// SetParent reassigns the parent of name. An empty parent makes the card
	// set a root. No loop check is made.
	SetParent(name, parent string) error

	// Rename changes a card set's name and repoints its children at the new
	// name in the same write.
	Rename(oldName, newName string) error

	// Delete removes the card set record. Children are not touched; use the
	// tree service to delete without leaving dangling parents.
	Delete(name string) error

	// Fetch returns all card sets matching the filter, ordered by name.
	// A nil or empty filter returns every card set.
	Fetch(filter Filter) ([]*CardSet, error)

	// Atomic runs fn against a transactional view of the table. Either all
	// writes made through the view take effect or none do.
	Atomic(fn func(tx CardSetTable) error) error
}

// Table operation errors.
var (
	ErrNotFound        = errors.New("card set not found")
	ErrDuplicateName   = errors.New("card set name already in use")
	ErrInvalidName     = errors.New("invalid card set name")
	ErrInvalidData     = errors.New("invalid card set data")
	ErrInvalidFilter   = errors.New("invalid filter value type")
	ErrInvalidArgument = errors.New("invalid argument")
)
