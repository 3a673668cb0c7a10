// This file loads card_sets.jsonl into SQLite on Attach and writes the table
// back out after each committed change.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// loadCardSetsJSONL reads the JSONL file and inserts its records into
// card_sets. Loading is transactional: all succeed or the table stays empty.
// Malformed lines, unparseable records, and records that violate constraints
// (such as a repeated name) are skipped and logged. Unknown fields are ignored.
func loadCardSetsJSONL(db *sql.DB, path string, logger *zap.Logger) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO card_sets (" + cardSetColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("preparing card_sets insert: %w", err)
	}
	defer stmt.Close()

	loaded := 0
	for i, raw := range records {
		var rec cardSetRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("skipping unreadable card set record", zap.Int("line", i+1), zap.Error(err))
			continue
		}
		if rec.Name == "" || rec.CardSetID == "" {
			logger.Warn("skipping card set record without name or id", zap.Int("line", i+1))
			continue
		}
		if _, err := time.Parse(timeLayout, rec.CreatedAt); err != nil {
			logger.Warn("skipping card set record with bad created_at",
				zap.String("name", rec.Name), zap.Error(err))
			continue
		}
		if _, err := time.Parse(timeLayout, rec.UpdatedAt); err != nil {
			rec.UpdatedAt = rec.CreatedAt
		}
		if _, err := stmt.Exec(
			rec.CardSetID, rec.Name, rec.Parent, rec.Author, rec.Comment,
			rec.Annotations, boolToInt(rec.InUse), rec.CreatedAt, rec.UpdatedAt,
		); err != nil {
			logger.Warn("skipping conflicting card set record",
				zap.String("name", rec.Name), zap.Error(err))
			continue
		}
		loaded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

// persistCardSetsJSONL rewrites the JSONL file from the current contents of
// card_sets, ordered by name.
func persistCardSetsJSONL(q querier, path string) error {
	rows, err := q.Query("SELECT " + cardSetColumns + " FROM card_sets ORDER BY name")
	if err != nil {
		return fmt.Errorf("querying card_sets for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		cs, err := hydrateCardSet(rows)
		if err != nil {
			return fmt.Errorf("scanning card_sets row: %w", err)
		}
		data, err := json.Marshal(toRecord(cs))
		if err != nil {
			return fmt.Errorf("marshaling card set %s: %w", cs.Name, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating card_sets for JSONL: %w", err)
	}

	return writeJSONL(path, records)
}
