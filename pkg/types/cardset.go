package types

import (
	"strings"
	"time"
)

// MaxNameLength is the longest card-set name the store accepts, in bytes.
const MaxNameLength = 512

// CardSet is a named, possibly nested collection of cards.
type CardSet struct {
	CardSetID   string    // UUID v7, generated on creation.
	Name        string    // Unique identifier; identity for graph purposes.
	Parent      string    // Name of the parent card set; empty for a root.
	Author      string    // Free text.
	Comment     string    // Free-text description.
	Annotations string    // Free-text notes.
	InUse       bool      // Marked as in use by the player.
	CreatedAt   time.Time // Timestamp of creation.
	UpdatedAt   time.Time // Timestamp of last modification.
}

// IsRoot reports whether the card set has no parent.
func (c *CardSet) IsRoot() bool {
	return c.Parent == ""
}

// Clone returns a copy of the card set that shares no state with c.
func (c *CardSet) Clone() *CardSet {
	cp := *c
	return &cp
}

var bracketReplacer = strings.NewReplacer("<", "(", ">", ")")

// CanonicalName trims the name and replaces angle brackets with parentheses,
// which keeps names safe to show in markup. It does not validate; tables
// apply it to every name they look up so a name matches however it was typed
// at creation.
func CanonicalName(name string) string {
	return bracketReplacer.Replace(strings.TrimSpace(name))
}

// NormalizeName returns the canonical form of name.
// Returns ErrInvalidName when the result is empty or longer than MaxNameLength.
func NormalizeName(name string) (string, error) {
	name = CanonicalName(name)
	if name == "" || len(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// Validate normalizes the card set's name and parent in place.
// Returns ErrInvalidName if either is malformed.
func (c *CardSet) Validate() error {
	name, err := NormalizeName(c.Name)
	if err != nil {
		return err
	}
	c.Name = name
	if c.Parent != "" {
		parent, err := NormalizeName(c.Parent)
		if err != nil {
			return err
		}
		c.Parent = parent
	}
	return nil
}
