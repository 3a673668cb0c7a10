// Package tree keeps the card-set hierarchy honest. Card sets point at their
// parent by name and children are found by scanning the table, so the parent
// relation can drift into a loop when users reparent freely. The Service
// detects and names such loops, finds children, and deletes card sets
// without orphaning their subtrees. It reports loops and leaves the repair
// (clearing one parent) to the caller.
package tree

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// Service runs hierarchy operations over a card-set table.
type Service struct {
	table  types.CardSetTable
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for mutations and loop warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Service over table.
func New(table types.CardSetTable, opts ...Option) *Service {
	s := &Service{table: table, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
