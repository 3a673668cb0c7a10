package tree

import (
	"errors"
	"strings"
)

// ErrLoop matches any *LoopError with errors.Is.
var ErrLoop = errors.New("card sets form a loop")

// LoopError reports a parent loop by the names of its members, in parent
// order, so it can be shown to the user for manual repair.
type LoopError struct {
	Names []string
}

func (e *LoopError) Error() string {
	return ErrLoop.Error() + ": " + strings.Join(e.Names, ", ")
}

// Is reports whether target is ErrLoop.
func (e *LoopError) Is(target error) bool {
	return target == ErrLoop
}
