package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/intentlab/intentd/internal/store"
	"go.uber.org/zap"
)

const (
	// Auto-transition thresholds.
	decisionThreshold = 0.95
	refiningThreshold = 0.70

	// Below this, a decayed intent is pruned to REFUTED.
	pruneThreshold = 0.05

	decayedReason    = "decayed"
	decisionReason   = "execution threshold exceeded"
	refinementReason = "confidence supports refinement"
)

// visited is the cycle guard carried through a single propagation pass. The
// relation graph is treated as possibly cyclic; each intent is touched at most
// once per pass, so a pass terminates in the graph's node count.
type visited map[uuid.UUID]bool

func newVisited() visited {
	return make(visited)
}

// PropagationService combines evidence into intent confidence, applies time
// decay, triggers auto-transitions and propagates evidence upward through
// intent-to-intent relation edges.
type PropagationService struct {
	intents   domain.IntentStore
	relations domain.RelationStore
	params    domain.ParamsStore
	stage     *StageService
	logger    *zap.Logger
}

func NewPropagationService(intents domain.IntentStore, relations domain.RelationStore, params domain.ParamsStore, stage *StageService, logger *zap.Logger) *PropagationService {
	return &PropagationService{
		intents:   intents,
		relations: relations,
		params:    params,
		stage:     stage,
		logger:    logger,
	}
}

// EvaluateConfidence applies time decay to an intent. A no-op for intents in
// a final stage or updated less than a full day ago. An intent decayed below
// the prune threshold is forced to REFUTED; this is the only pruning path.
func (s *PropagationService) EvaluateConfidence(ctx context.Context, id uuid.UUID) (*domain.Intent, error) {
	return s.evaluate(ctx, id, newVisited())
}

func (s *PropagationService) evaluate(ctx context.Context, id uuid.UUID, seen visited) (*domain.Intent, error) {
	params, err := s.params.Get(ctx)
	if err != nil {
		return nil, err
	}

	intent, err := s.applyDecay(ctx, id, params.DecayRate)
	if err != nil {
		return nil, err
	}

	if intent.Confidence < pruneThreshold && intent.Stage != domain.StageRefuted {
		return s.stage.transition(ctx, id, domain.StageRefuted, decayedReason, seen)
	}
	return intent, nil
}

func (s *PropagationService) applyDecay(ctx context.Context, id uuid.UUID, decayRate float64) (*domain.Intent, error) {
	unlock := s.stage.locks.Lock(id)
	defer unlock()

	intent, err := s.intents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}

	if intent.Stage.Final() {
		return intent, nil
	}

	days := int(time.Since(intent.UpdatedAt).Hours() / 24)
	if days < 1 {
		return intent, nil
	}

	before := intent.Confidence
	intent.Confidence = clamp01(intent.Confidence * math.Pow(decayRate, float64(days)))
	if err := s.intents.Update(ctx, intent); err != nil {
		return nil, err
	}

	s.logger.Debug("confidence decayed",
		zap.String("intent_id", intent.ID.String()),
		zap.Int("days_elapsed", days),
		zap.Float64("old_confidence", before),
		zap.Float64("new_confidence", intent.Confidence))

	return intent, nil
}

// AddEvidence folds new evidence into an intent's confidence using a
// saturating combination: c + w*(1-c). Decay is always applied first.
// Crossing 0.95 auto-transitions to DECISION; crossing 0.70 from EXPLORATION
// auto-transitions to REFINING.
func (s *PropagationService) AddEvidence(ctx context.Context, id uuid.UUID, weight float64) (*domain.Intent, error) {
	return s.addEvidence(ctx, id, weight, newVisited())
}

func (s *PropagationService) addEvidence(ctx context.Context, id uuid.UUID, weight float64, seen visited) (*domain.Intent, error) {
	seen[id] = true

	intent, err := s.evaluate(ctx, id, seen)
	if err != nil {
		return nil, err
	}
	if intent.Stage.Final() {
		return intent, nil
	}

	weight = clamp01(weight)
	intent, err = s.combine(ctx, id, weight)
	if err != nil {
		return nil, err
	}
	if intent.Stage.Final() {
		return intent, nil
	}

	switch {
	case intent.Confidence >= decisionThreshold && intent.Stage != domain.StageDecision:
		return s.stage.transition(ctx, id, domain.StageDecision, decisionReason, seen)
	case intent.Confidence >= refiningThreshold && intent.Stage == domain.StageExploration:
		return s.stage.transition(ctx, id, domain.StageRefining, refinementReason, seen)
	}
	return intent, nil
}

func (s *PropagationService) combine(ctx context.Context, id uuid.UUID, weight float64) (*domain.Intent, error) {
	unlock := s.stage.locks.Lock(id)
	defer unlock()

	intent, err := s.intents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}
	if intent.Stage.Final() {
		return intent, nil
	}

	before := intent.Confidence
	intent.Confidence = clamp01(intent.Confidence + weight*(1-intent.Confidence))
	if err := s.intents.Update(ctx, intent); err != nil {
		return nil, err
	}

	s.logger.Debug("evidence combined",
		zap.String("intent_id", intent.ID.String()),
		zap.Float64("evidence", weight),
		zap.Float64("old_confidence", before),
		zap.Float64("new_confidence", intent.Confidence))

	return intent, nil
}

// propagateUp pushes evidence from a transitioned intent to its graph
// parents: sources of intent-to-intent edges targeting it. Parents already at
// DECISION are settled and skipped; failures on individual edges are logged
// and do not abort the pass.
func (s *PropagationService) propagateUp(ctx context.Context, child *domain.Intent, seen visited) {
	edges, err := s.relations.ListByTarget(ctx, domain.EndpointIntent, child.ID)
	if err != nil {
		s.logger.Warn("parent lookup failed during propagation",
			zap.String("intent_id", child.ID.String()),
			zap.Error(err))
		return
	}

	for _, edge := range edges {
		if edge.SourceType != domain.EndpointIntent {
			continue
		}
		if seen[edge.SourceID] {
			continue
		}

		parent, err := s.intents.GetByID(ctx, edge.SourceID)
		if err != nil {
			s.logger.Warn("parent fetch failed during propagation",
				zap.String("parent_id", edge.SourceID.String()),
				zap.Error(err))
			continue
		}
		if parent.Stage == domain.StageDecision {
			continue
		}

		evidence := child.Confidence * edge.Weight
		if _, err := s.addEvidence(ctx, edge.SourceID, evidence, seen); err != nil {
			s.logger.Warn("upward propagation failed",
				zap.String("parent_id", edge.SourceID.String()),
				zap.Float64("evidence", evidence),
				zap.Error(err))
		}
	}
}
