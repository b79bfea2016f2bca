package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one immutable record of a mutation to a versioned entity
type HistoryEntry struct {
	ID         uint
	EntityType string
	EntityID   uuid.UUID
	VersionID  int
	Operation  Operation
	Before     json.RawMessage // nil for inserts
	After      json.RawMessage // nil for deletes
	RecordedAt time.Time
}
