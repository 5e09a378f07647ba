package domain

import (
	"time"

	"github.com/google/uuid"
)

// Milestone is one step in a trajectory. A milestone tagged with an intent id
// links that intent to its position in the trajectory; the following milestone
// is the predicted next step when the intent reaches execution.
type Milestone struct {
	Label string   `json:"label"`
	Tags  []string `json:"tags,omitempty"`
}

type Trajectory struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	Milestones []Milestone `json:"milestones"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
