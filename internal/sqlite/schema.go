package sqlite

// Schema DDL for the card_sets table. Parent holds the parent's name; the
// empty string marks a root. No foreign key is declared on parent because
// the relation may legitimately be mutated into a loop.
const (
	createCardSets = `CREATE TABLE IF NOT EXISTS card_sets (
    card_set_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    parent TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    comment TEXT NOT NULL DEFAULT '',
    annotations TEXT NOT NULL DEFAULT '',
    in_use INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxCardSetsParent = `CREATE INDEX IF NOT EXISTS idx_card_sets_parent ON card_sets(parent);`
	idxCardSetsInUse  = `CREATE INDEX IF NOT EXISTS idx_card_sets_in_use ON card_sets(in_use);`
)

// schemaDDL lists every statement run on Attach, in order.
var schemaDDL = []string{
	createCardSets,
	idxCardSetsParent,
	idxCardSetsInUse,
}

// cardSetColumns is the column list shared by every SELECT on card_sets.
const cardSetColumns = "card_set_id, name, parent, author, comment, annotations, in_use, created_at, updated_at"
