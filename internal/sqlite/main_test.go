package sqlite

import (
	"testing"

	"go.uber.org/goleak"
)

// Detach must leave no connection goroutines behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
