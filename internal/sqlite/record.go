package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// timeLayout is the timestamp format stored in SQLite and JSONL.
const timeLayout = time.RFC3339Nano

// cardSetRecord is the JSONL line format. Field names match the SQLite
// columns so a record can be inserted without translation.
type cardSetRecord struct {
	CardSetID   string `json:"card_set_id"`
	Name        string `json:"name"`
	Parent      string `json:"parent"`
	Author      string `json:"author"`
	Comment     string `json:"comment"`
	Annotations string `json:"annotations"`
	InUse       bool   `json:"in_use"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toRecord(cs *types.CardSet) cardSetRecord {
	return cardSetRecord{
		CardSetID:   cs.CardSetID,
		Name:        cs.Name,
		Parent:      cs.Parent,
		Author:      cs.Author,
		Comment:     cs.Comment,
		Annotations: cs.Annotations,
		InUse:       cs.InUse,
		CreatedAt:   cs.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   cs.UpdatedAt.UTC().Format(timeLayout),
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateCardSet converts a row selected with cardSetColumns into a
// *types.CardSet.
func hydrateCardSet(row scanner) (*types.CardSet, error) {
	var cs types.CardSet
	var inUse int
	var createdAt, updatedAt string
	if err := row.Scan(
		&cs.CardSetID, &cs.Name, &cs.Parent, &cs.Author, &cs.Comment,
		&cs.Annotations, &inUse, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	cs.InUse = inUse != 0

	var err error
	if cs.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if cs.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &cs, nil
}

// boolToInt maps a Go bool onto SQLite's integer booleans.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// querier is the subset of *sql.DB and *sql.Tx the table accessors use.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
