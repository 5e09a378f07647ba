package domain

import (
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageExploration Stage = "EXPLORATION"
	StageRefining    Stage = "REFINING"
	StageDecision    Stage = "DECISION"
	StageRefuted     Stage = "REFUTED"
)

func ValidStage(s string) bool {
	switch Stage(s) {
	case StageExploration, StageRefining, StageDecision, StageRefuted:
		return true
	}
	return false
}

// stageTransitions is the legal transition table. Same-stage transitions are
// always allowed and handled by CanTransitionTo directly.
var stageTransitions = map[Stage][]Stage{
	StageExploration: {StageRefining, StageRefuted, StageDecision},
	StageRefining:    {StageExploration, StageDecision, StageRefuted},
	StageRefuted:     {StageExploration},
	StageDecision:    {StageRefining},
}

func (s Stage) CanTransitionTo(target Stage) bool {
	if s == target {
		return true
	}
	for _, t := range stageTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Final reports whether the stage accepts no further evidence.
// DECISION intents are settled; REFUTED intents are pruned.
func (s Stage) Final() bool {
	return s == StageDecision || s == StageRefuted
}

// StageEntry is one record in an intent's append-only stage history.
type StageEntry struct {
	Stage Stage     `json:"stage"`
	At    time.Time `json:"at"`
	Note  string    `json:"note"`
}

type Intent struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Stage       Stage        `json:"stage"`
	Confidence  float64      `json:"confidence"`
	History     []StageEntry `json:"stage_history"`
	Tags        []string     `json:"tags,omitempty"`
	Priority    int          `json:"priority"`
	ParentID    *uuid.UUID   `json:"parent_id,omitempty"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
