package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
)

func TestCreateIntent_Defaults(t *testing.T) {
	env := newTestEnv()

	intent, err := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "Learn Go generics"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if intent.Stage != domain.StageExploration {
		t.Fatalf("expected stage EXPLORATION, got %s", intent.Stage)
	}
	if intent.Confidence != 0.1 {
		t.Fatalf("expected confidence 0.1, got %f", intent.Confidence)
	}
	if !intent.Active {
		t.Fatal("expected intent to be active")
	}
	if len(intent.History) != 1 || intent.History[0].Note != "created" {
		t.Fatalf("expected single creation history entry, got %+v", intent.History)
	}
}

func TestCreateIntent_PrecisionSetsConfidence(t *testing.T) {
	env := newTestEnv()

	precision := 0.6
	intent, err := env.stage.CreateIntent(context.Background(), CreateIntentInput{
		Title:     "Choose a database",
		Precision: &precision,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if intent.Confidence != 0.6 {
		t.Fatalf("expected confidence 0.6, got %f", intent.Confidence)
	}
}

func TestCreateIntent_Validation(t *testing.T) {
	env := newTestEnv()

	if _, err := env.stage.CreateIntent(context.Background(), CreateIntentInput{}); !errors.Is(err, ErrIntentTitleEmpty) {
		t.Fatalf("expected ErrIntentTitleEmpty, got %v", err)
	}
	if _, err := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "x", Stage: "LIMBO"}); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}
}

func TestTransitionState_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.stage.TransitionState(context.Background(), uuid.New(), domain.StageRefining, "")
	if !errors.Is(err, ErrIntentNotFound) {
		t.Fatalf("expected ErrIntentNotFound, got %v", err)
	}
}

func TestTransitionState_InvalidCarriesStages(t *testing.T) {
	env := newTestEnv()

	intent, _ := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "x"})
	_, _ = env.stage.TransitionState(context.Background(), intent.ID, domain.StageRefuted, "disproved")

	_, err := env.stage.TransitionState(context.Background(), intent.ID, domain.StageDecision, "")
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.From != domain.StageRefuted || invalid.To != domain.StageDecision {
		t.Fatalf("expected REFUTED -> DECISION in error, got %s -> %s", invalid.From, invalid.To)
	}
}

func TestTransitionState_DecisionClampsConfidenceAndStages(t *testing.T) {
	env := newTestEnv()

	precision := 0.5
	intent, _ := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "Ship v2", Precision: &precision})

	updated, err := env.stage.TransitionState(context.Background(), intent.ID, domain.StageDecision, "committee approved")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.Confidence != 0.95 {
		t.Fatalf("expected confidence clamped to execution threshold 0.95, got %f", updated.Confidence)
	}
	queue := env.queue.List()
	if len(queue) != 1 {
		t.Fatalf("expected 1 staged payload, got %d", len(queue))
	}
	if queue[0].IntentSourceID != intent.ID || queue[0].Directive != "Ship v2" {
		t.Fatalf("unexpected payload: %+v", queue[0])
	}
}

func TestTransitionState_RefutedZeroesConfidence(t *testing.T) {
	env := newTestEnv()

	precision := 0.8
	intent, _ := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "x", Precision: &precision})

	updated, err := env.stage.TransitionState(context.Background(), intent.ID, domain.StageRefuted, "assumption falsified")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Confidence != 0 {
		t.Fatalf("expected confidence 0, got %f", updated.Confidence)
	}
	if updated.Active {
		t.Fatal("expected refuted intent to be inactive")
	}
}

func TestTransitionState_HistoryIsAppendOnly(t *testing.T) {
	env := newTestEnv()

	intent, _ := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "x"})
	_, _ = env.stage.TransitionState(context.Background(), intent.ID, domain.StageRefining, "narrowed scope")
	updated, _ := env.stage.TransitionState(context.Background(), intent.ID, domain.StageExploration, "")

	if len(updated.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(updated.History))
	}
	if updated.History[1].Note != "narrowed scope" {
		t.Fatalf("expected recorded reason, got %q", updated.History[1].Note)
	}
	if updated.History[2].Note != defaultTransitionReason {
		t.Fatalf("expected default reason, got %q", updated.History[2].Note)
	}
	for i := 1; i < len(updated.History); i++ {
		if updated.History[i].At.Before(updated.History[i-1].At) {
			t.Fatal("expected non-decreasing history timestamps")
		}
	}
}

func TestTransitionState_SameStageIsLegal(t *testing.T) {
	env := newTestEnv()

	intent, _ := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "x"})
	updated, err := env.stage.TransitionState(context.Background(), intent.ID, domain.StageExploration, "revisited")
	if err != nil {
		t.Fatalf("expected no error for same-stage transition, got %v", err)
	}
	if updated.Stage != domain.StageExploration {
		t.Fatalf("expected stage unchanged, got %s", updated.Stage)
	}
}

func TestTransitionState_StoreWriteFailureIsFatal(t *testing.T) {
	env := newTestEnv()

	intent, _ := env.stage.CreateIntent(context.Background(), CreateIntentInput{Title: "x"})
	env.intents.updateErr = errors.New("connection reset")

	_, err := env.stage.TransitionState(context.Background(), intent.ID, domain.StageRefining, "")
	if err == nil {
		t.Fatal("expected write failure to propagate")
	}
}
