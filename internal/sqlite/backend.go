// Package sqlite implements the SQLite storage backend for card sets.
// SQLite is the query engine; card_sets.jsonl in the data directory is the
// source of truth and is reloaded into a fresh database on every Attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// dbFile is the SQLite database file created inside the data directory.
const dbFile = "cardsets.db"

var _ types.Catalog = (*Backend)(nil)

// Backend implements the Catalog interface using SQLite as the query engine
// and a JSONL file as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	logger   *zap.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for load warnings and write tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CardSets returns the card-set table.
// Returns ErrCatalogDetached if the backend is not attached.
func (b *Backend) CardSets() (types.CardSetTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCatalogDetached
	}
	return &cardSetsTable{backend: b}, nil
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite database, and
// loads card_sets.jsonl into it.
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

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is a cache of the JSONL file; start from scratch.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps transactions and plain queries from contending
	// for SQLite's file lock.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	jsonlPath := filepath.Join(dataDir, cardSetsFile)
	if err := ensureJSONLFile(jsonlPath); err != nil {
		db.Close()
		return err
	}
	loaded, err := loadCardSetsJSONL(db, jsonlPath, b.logger)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.attached = true

	b.logger.Debug("catalog attached",
		zap.String("data_dir", dataDir),
		zap.Int("card_sets", loaded))
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrCatalogDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false

	b.logger.Debug("catalog detached", zap.String("data_dir", b.dataDir))
	return nil
}

// jsonlPath returns the path of the card-set JSONL file.
func (b *Backend) jsonlPath() string {
	return filepath.Join(b.dataDir, cardSetsFile)
}
