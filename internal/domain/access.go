package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccessEventKind string

const (
	AccessIngest  AccessEventKind = "ingest"
	AccessStaging AccessEventKind = "staging"
)

// AccessEvent is an append-only audit record. Writes are best-effort: a
// failure is logged and swallowed, never surfaced to the caller.
type AccessEvent struct {
	ID        uuid.UUID       `json:"id"`
	Kind      AccessEventKind `json:"kind"`
	RefID     *uuid.UUID      `json:"ref_id,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
