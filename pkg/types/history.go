package types

import (
	"time"

	"github.com/google/uuid"
)

// FieldChange records the before/after value of a single flattened field path.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// ChangeSet is keyed by dotted field path, e.g. "deliveryDetails.status".
type ChangeSet map[string]FieldChange

// HistoryEntry is one append-only audit record.
type HistoryEntry struct {
	Updater   uuid.UUID `json:"updater"`
	Timestamp time.Time `json:"timestamp"`
	Changes   ChangeSet `json:"changes"`
}

// History is stored as a jsonb array and only ever appended to.
type History []HistoryEntry

// Append returns h with entry added when it carries at least one change.
func (h History) Append(entry HistoryEntry) History {
	if len(entry.Changes) == 0 {
		return h
	}
	return append(h, entry)
}
