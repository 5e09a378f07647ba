package domain

import (
	"time"

	"github.com/google/uuid"
)

type PayloadStatus string

const (
	PayloadStaged   PayloadStatus = "staged"
	PayloadApproved PayloadStatus = "approved"
	PayloadRejected PayloadStatus = "rejected"
)

// ExecutionParameters carries the directive details handed to downstream
// agents.
type ExecutionParameters struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ExecutionContext bundles related context gathered at staging time.
type ExecutionContext struct {
	Persons        []string `json:"related_persons,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	NextMilestones []string `json:"predicted_next_milestones,omitempty"`
}

// ExecutionPayload is a staged decision awaiting external approval. Payloads
// live only in the in-process queue; they are regenerable from intents at
// DECISION and are not persisted.
type ExecutionPayload struct {
	TaskID            uuid.UUID           `json:"task_id"`
	IntentSourceID    uuid.UUID           `json:"intent_source_id"`
	Directive         string              `json:"directive"`
	Parameters        ExecutionParameters `json:"parameters"`
	Priority          int                 `json:"priority"`
	ConfidenceTrigger float64             `json:"confidence_trigger"`
	Context           ExecutionContext    `json:"context"`
	Status            PayloadStatus       `json:"status"`
	StagedAt          time.Time           `json:"staged_at"`
}
