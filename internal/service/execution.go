package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"go.uber.org/zap"
)

// ExecutionQueue stages high-confidence decisions for external approval. The
// queue is in-process and owned by whoever constructs it; payloads are
// regenerable from intents at DECISION, so a crash losing them is acceptable.
type ExecutionQueue struct {
	mu    sync.Mutex
	items []domain.ExecutionPayload

	params       domain.ParamsStore
	relations    domain.RelationStore
	persons      domain.PersonStore
	trajectories domain.TrajectoryStore
	access       domain.AccessLogStore
	logger       *zap.Logger
}

func NewExecutionQueue(params domain.ParamsStore, relations domain.RelationStore, persons domain.PersonStore, trajectories domain.TrajectoryStore, access domain.AccessLogStore, logger *zap.Logger) *ExecutionQueue {
	return &ExecutionQueue{
		params:       params,
		relations:    relations,
		persons:      persons,
		trajectories: trajectories,
		access:       access,
		logger:       logger,
	}
}

// Enqueue builds and stages an execution payload for an intent at DECISION.
// A no-op when confidence sits below the execution threshold: the intent
// stays at DECISION unstaged until fresh evidence lifts it, so staging is
// re-evaluable.
func (q *ExecutionQueue) Enqueue(ctx context.Context, intent *domain.Intent) error {
	params, err := q.params.Get(ctx)
	if err != nil {
		return err
	}
	if intent.Confidence < params.ExecutionThreshold {
		return nil
	}

	payload := domain.ExecutionPayload{
		TaskID:         uuid.New(),
		IntentSourceID: intent.ID,
		Directive:      intent.Title,
		Parameters: domain.ExecutionParameters{
			Description: intent.Description,
			Tags:        intent.Tags,
		},
		Priority:          intent.Priority,
		ConfidenceTrigger: intent.Confidence,
		Context: domain.ExecutionContext{
			Persons:        q.relatedPersons(ctx, intent),
			Tags:           intent.Tags,
			NextMilestones: q.predictNextMilestones(ctx, intent),
		},
		Status:   domain.PayloadStaged,
		StagedAt: time.Now(),
	}

	q.mu.Lock()
	q.items = append(q.items, payload)
	q.mu.Unlock()

	q.logger.Info("execution payload staged",
		zap.String("task_id", payload.TaskID.String()),
		zap.String("intent_id", intent.ID.String()),
		zap.Float64("confidence_trigger", payload.ConfidenceTrigger))

	// The access log is a secondary side effect; failures are swallowed.
	refID := intent.ID
	if err := q.access.Append(ctx, &domain.AccessEvent{
		Kind:   domain.AccessStaging,
		RefID:  &refID,
		Detail: payload.Directive,
	}); err != nil {
		q.logger.Warn("failed to log staging event", zap.Error(err))
	}

	return nil
}

// relatedPersons gathers persons connected to the intent: sources of
// person-to-intent edges. Best-effort; lookup failures degrade to an empty
// context.
func (q *ExecutionQueue) relatedPersons(ctx context.Context, intent *domain.Intent) []string {
	edges, err := q.relations.ListByTarget(ctx, domain.EndpointIntent, intent.ID)
	if err != nil {
		q.logger.Warn("related person lookup failed",
			zap.String("intent_id", intent.ID.String()),
			zap.Error(err))
		return nil
	}

	var names []string
	for _, edge := range edges {
		if edge.SourceType != domain.EndpointPerson {
			continue
		}
		person, err := q.persons.GetByID(ctx, edge.SourceID)
		if err != nil {
			continue
		}
		names = append(names, person.Name)
	}
	return names
}

// predictNextMilestones returns, from every trajectory, the label of the
// milestone immediately following one tagged with this intent's id.
func (q *ExecutionQueue) predictNextMilestones(ctx context.Context, intent *domain.Intent) []string {
	trajectories, err := q.trajectories.List(ctx)
	if err != nil {
		q.logger.Warn("trajectory lookup failed",
			zap.String("intent_id", intent.ID.String()),
			zap.Error(err))
		return nil
	}

	intentTag := intent.ID.String()
	var next []string
	for _, trajectory := range trajectories {
		for i, milestone := range trajectory.Milestones {
			if i+1 >= len(trajectory.Milestones) {
				break
			}
			for _, tag := range milestone.Tags {
				if tag == intentTag {
					next = append(next, trajectory.Milestones[i+1].Label)
					break
				}
			}
		}
	}
	return next
}

// List returns a snapshot of the staged payloads.
func (q *ExecutionQueue) List() []domain.ExecutionPayload {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.ExecutionPayload, len(q.items))
	copy(out, q.items)
	return out
}

// Get returns the payload with the given task id.
func (q *ExecutionQueue) Get(taskID uuid.UUID) (*domain.ExecutionPayload, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range q.items {
		if item.TaskID == taskID {
			p := item
			return &p, true
		}
	}
	return nil, false
}

// Remove drops the payload with the given task id. Idempotent: removing an
// absent id is a no-op.
func (q *ExecutionQueue) Remove(taskID uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, item := range q.items {
		if item.TaskID == taskID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
