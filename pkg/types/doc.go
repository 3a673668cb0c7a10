// Package types defines the Catalog and CardSetTable interfaces, the CardSet
// entity, and the standard error types for the card-set storage system.
//
// A card set names its parent by name; children are never stored and are
// found by scanning the table. The parent relation is expected to form a
// forest but can be mutated into a loop, which the tree service detects.
package types
