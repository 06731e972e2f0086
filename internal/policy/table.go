package policy

import (
	"maps"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
	"github.com/danielpatrickdp/dialogue-memo/internal/featkey"
)

// #region table

// Table is an immutable key→action lookup table. A training pass builds
// a complete new Table and the policy swaps the reference in one step,
// so concurrent readers never observe a partial table.
type Table struct {
	entries  map[string]string
	compress bool
}

// NewTable wraps existing entries. The map is copied.
func NewTable(entries map[string]string, compress bool) *Table {
	return &Table{entries: maps.Clone(entries), compress: compress}
}

// #endregion table

// #region lookups

// Key returns the canonical lookup key for a state window.
func (t *Table) Key(window []dialogue.State) string {
	return featkey.Key(window, t.compress)
}

// Get looks up the memorized action for a state window.
func (t *Table) Get(window []dialogue.State) (string, bool) {
	return t.GetKey(t.Key(window))
}

// GetKey looks up a precomputed key. The empty key never matches.
func (t *Table) GetKey(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	action, ok := t.entries[key]
	return action, ok
}

// Len returns the number of memorized entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the key→action mapping.
func (t *Table) Entries() map[string]string {
	return maps.Clone(t.entries)
}

// #endregion lookups
