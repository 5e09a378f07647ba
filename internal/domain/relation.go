package domain

import (
	"time"

	"github.com/google/uuid"
)

type EndpointType string

const (
	EndpointPerson EndpointType = "person"
	EndpointIntent EndpointType = "intent"
	EndpointChain  EndpointType = "thinking_chain"
)

func ValidEndpointType(t string) bool {
	switch EndpointType(t) {
	case EndpointPerson, EndpointIntent, EndpointChain:
		return true
	}
	return false
}

// Relation is a weighted directed edge between two identified entities.
// Edges where both endpoints are intents form the confidence propagation
// graph: the source is the parent, the target the child.
type Relation struct {
	ID         uuid.UUID    `json:"id"`
	SourceType EndpointType `json:"source_type"`
	SourceID   uuid.UUID    `json:"source_id"`
	TargetType EndpointType `json:"target_type"`
	TargetID   uuid.UUID    `json:"target_id"`
	Label      string       `json:"label"`
	Weight     float64      `json:"weight"`
	CreatedAt  time.Time    `json:"created_at"`
}

type Person struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
