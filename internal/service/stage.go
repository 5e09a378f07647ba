package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/intentlab/intentd/internal/store"
	"go.uber.org/zap"
)

var (
	ErrIntentNotFound   = errors.New("intent not found")
	ErrIntentTitleEmpty = errors.New("title is required")
	ErrInvalidStage     = errors.New("invalid stage")
)

// InvalidTransitionError reports an illegal stage transition with both
// endpoints for diagnostics. Never auto-corrected.
type InvalidTransitionError struct {
	From domain.Stage
	To   domain.Stage
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid stage transition: %s -> %s", e.From, e.To)
}

const (
	defaultInitialConfidence = 0.1
	defaultTransitionReason  = "stage transition"
)

type CreateIntentInput struct {
	Title       string
	Description string
	Stage       string
	Precision   *float64
	Priority    int
	Tags        []string
	ParentID    *uuid.UUID
}

// StageService owns the intent lifecycle: creation, the transition table and
// per-stage confidence bounds. Transitions to DECISION hand the intent to the
// execution queue; every transition triggers upward propagation.
type StageService struct {
	intents domain.IntentStore
	params  domain.ParamsStore
	queue   *ExecutionQueue
	prop    *PropagationService
	locks   *keyedMutex
	logger  *zap.Logger
}

func NewStageService(intents domain.IntentStore, params domain.ParamsStore, queue *ExecutionQueue, logger *zap.Logger) *StageService {
	return &StageService{
		intents: intents,
		params:  params,
		queue:   queue,
		locks:   newKeyedMutex(),
		logger:  logger,
	}
}

// SetPropagator wires the confidence propagator after construction; the two
// services call into each other.
func (s *StageService) SetPropagator(p *PropagationService) {
	s.prop = p
}

func (s *StageService) CreateIntent(ctx context.Context, in CreateIntentInput) (*domain.Intent, error) {
	if in.Title == "" {
		return nil, ErrIntentTitleEmpty
	}

	stage := domain.StageExploration
	if in.Stage != "" {
		if !domain.ValidStage(in.Stage) {
			return nil, ErrInvalidStage
		}
		stage = domain.Stage(in.Stage)
	}

	confidence := defaultInitialConfidence
	if in.Precision != nil {
		confidence = clamp01(*in.Precision)
	}

	intent := &domain.Intent{
		Title:       in.Title,
		Description: in.Description,
		Stage:       stage,
		Confidence:  confidence,
		History: []domain.StageEntry{
			{Stage: stage, At: time.Now(), Note: "created"},
		},
		Tags:     in.Tags,
		Priority: in.Priority,
		ParentID: in.ParentID,
		Active:   true,
	}

	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, err
	}

	s.logger.Debug("intent created",
		zap.String("intent_id", intent.ID.String()),
		zap.String("stage", string(intent.Stage)),
		zap.Float64("confidence", intent.Confidence))

	return intent, nil
}

func (s *StageService) GetIntent(ctx context.Context, id uuid.UUID) (*domain.Intent, error) {
	intent, err := s.intents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}
	return intent, nil
}

func (s *StageService) ListIntents(ctx context.Context) ([]domain.Intent, error) {
	return s.intents.List(ctx)
}

// TransitionState moves an intent to the target stage, appends history,
// applies per-stage confidence bounds, stages DECISION intents for execution
// and propagates evidence to graph parents.
func (s *StageService) TransitionState(ctx context.Context, id uuid.UUID, target domain.Stage, reason string) (*domain.Intent, error) {
	return s.transition(ctx, id, target, reason, newVisited())
}

func (s *StageService) transition(ctx context.Context, id uuid.UUID, target domain.Stage, reason string, seen visited) (*domain.Intent, error) {
	seen[id] = true

	params, err := s.params.Get(ctx)
	if err != nil {
		return nil, err
	}

	intent, err := s.applyTransition(ctx, id, target, reason, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("stage transition",
		zap.String("intent_id", intent.ID.String()),
		zap.String("stage", string(intent.Stage)),
		zap.Float64("confidence", intent.Confidence),
		zap.String("reason", reason))

	// Staging failures are secondary: the transition already persisted.
	if target == domain.StageDecision && s.queue != nil {
		if err := s.queue.Enqueue(ctx, intent); err != nil {
			s.logger.Warn("failed to stage intent for execution",
				zap.String("intent_id", intent.ID.String()),
				zap.Error(err))
		}
	}

	if s.prop != nil {
		s.prop.propagateUp(ctx, intent, seen)
	}

	return intent, nil
}

// applyTransition performs the locked read-modify-write for a single intent.
func (s *StageService) applyTransition(ctx context.Context, id uuid.UUID, target domain.Stage, reason string, params *domain.SystemParameters) (*domain.Intent, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	intent, err := s.intents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}

	if !intent.Stage.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: intent.Stage, To: target}
	}

	if reason == "" {
		reason = defaultTransitionReason
	}

	intent.Stage = target
	switch target {
	case domain.StageDecision:
		if intent.Confidence < params.ExecutionThreshold {
			intent.Confidence = params.ExecutionThreshold
		}
	case domain.StageRefuted:
		intent.Confidence = 0
		intent.Active = false
	default:
		intent.Active = true
	}
	intent.History = append(intent.History, domain.StageEntry{
		Stage: target,
		At:    time.Now(),
		Note:  reason,
	})

	// The intent record is primary state: a write failure here is fatal to
	// the operation.
	if err := s.intents.Update(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
