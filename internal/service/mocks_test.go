package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/intentlab/intentd/internal/store"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// mockIntentStore implements domain.IntentStore for testing.
type mockIntentStore struct {
	intents   map[uuid.UUID]*domain.Intent
	updateErr error
}

func newMockIntentStore() *mockIntentStore {
	return &mockIntentStore{intents: make(map[uuid.UUID]*domain.Intent)}
}

func copyIntent(i *domain.Intent) *domain.Intent {
	c := *i
	c.History = append([]domain.StageEntry(nil), i.History...)
	c.Tags = append([]string(nil), i.Tags...)
	return &c
}

func (m *mockIntentStore) Create(ctx context.Context, i *domain.Intent) error {
	i.ID = uuid.New()
	now := time.Now()
	i.CreatedAt = now
	i.UpdatedAt = now
	m.intents[i.ID] = copyIntent(i)
	return nil
}

func (m *mockIntentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Intent, error) {
	i, ok := m.intents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyIntent(i), nil
}

func (m *mockIntentStore) Update(ctx context.Context, i *domain.Intent) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.intents[i.ID]; !ok {
		return store.ErrNotFound
	}
	i.UpdatedAt = time.Now()
	m.intents[i.ID] = copyIntent(i)
	return nil
}

func (m *mockIntentStore) List(ctx context.Context) ([]domain.Intent, error) {
	var out []domain.Intent
	for _, i := range m.intents {
		out = append(out, *copyIntent(i))
	}
	return out, nil
}

func (m *mockIntentStore) ListActive(ctx context.Context) ([]domain.Intent, error) {
	var out []domain.Intent
	for _, i := range m.intents {
		if i.Active {
			out = append(out, *copyIntent(i))
		}
	}
	return out, nil
}

// mockRelationStore implements domain.RelationStore for testing.
type mockRelationStore struct {
	relations []domain.Relation
}

func newMockRelationStore() *mockRelationStore {
	return &mockRelationStore{}
}

func (m *mockRelationStore) Create(ctx context.Context, r *domain.Relation) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.relations = append(m.relations, *r)
	return nil
}

func (m *mockRelationStore) ListByTarget(ctx context.Context, targetType domain.EndpointType, targetID uuid.UUID) ([]domain.Relation, error) {
	var out []domain.Relation
	for _, r := range m.relations {
		if r.TargetType == targetType && r.TargetID == targetID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRelationStore) ListBySource(ctx context.Context, sourceType domain.EndpointType, sourceID uuid.UUID) ([]domain.Relation, error) {
	var out []domain.Relation
	for _, r := range m.relations {
		if r.SourceType == sourceType && r.SourceID == sourceID {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockPersonStore implements domain.PersonStore for testing.
type mockPersonStore struct {
	persons map[string]*domain.Person
}

func newMockPersonStore() *mockPersonStore {
	return &mockPersonStore{persons: make(map[string]*domain.Person)}
}

func (m *mockPersonStore) Upsert(ctx context.Context, p *domain.Person) error {
	key := strings.ToLower(p.Name)
	if existing, ok := m.persons[key]; ok {
		if p.Role != "" {
			existing.Role = p.Role
		}
		if p.Confidence > existing.Confidence {
			existing.Confidence = p.Confidence
		}
		existing.UpdatedAt = time.Now()
		*p = *existing
		return nil
	}
	p.ID = uuid.New()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	stored := *p
	m.persons[key] = &stored
	return nil
}

func (m *mockPersonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	for _, p := range m.persons {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockPersonStore) GetByName(ctx context.Context, name string) (*domain.Person, error) {
	p, ok := m.persons[strings.ToLower(name)]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *p
	return &c, nil
}

// mockTrajectoryStore implements domain.TrajectoryStore for testing.
type mockTrajectoryStore struct {
	trajectories []domain.Trajectory
}

func newMockTrajectoryStore() *mockTrajectoryStore {
	return &mockTrajectoryStore{}
}

func (m *mockTrajectoryStore) Create(ctx context.Context, t *domain.Trajectory) error {
	t.ID = uuid.New()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	m.trajectories = append(m.trajectories, *t)
	return nil
}

func (m *mockTrajectoryStore) List(ctx context.Context) ([]domain.Trajectory, error) {
	return append([]domain.Trajectory(nil), m.trajectories...), nil
}

// mockBaselineStore implements domain.BaselineStore for testing.
type mockBaselineStore struct {
	baseline    *domain.Baseline
	updateCalls int
	updateErr   error
}

func newMockBaselineStore() *mockBaselineStore {
	return &mockBaselineStore{}
}

func (m *mockBaselineStore) Get(ctx context.Context) (*domain.Baseline, error) {
	if m.baseline == nil {
		m.baseline = &domain.Baseline{}
	}
	c := *m.baseline
	return &c, nil
}

func (m *mockBaselineStore) Update(ctx context.Context, b *domain.Baseline) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updateCalls++
	b.UpdatedAt = time.Now()
	c := *b
	m.baseline = &c
	return nil
}

// mockParamsStore implements domain.ParamsStore for testing.
type mockParamsStore struct {
	params      *domain.SystemParameters
	updateCalls int
}

func newMockParamsStore() *mockParamsStore {
	return &mockParamsStore{}
}

func (m *mockParamsStore) Get(ctx context.Context) (*domain.SystemParameters, error) {
	if m.params == nil {
		m.params = domain.DefaultSystemParameters()
	}
	c := *m.params
	return &c, nil
}

func (m *mockParamsStore) Update(ctx context.Context, p *domain.SystemParameters) error {
	m.updateCalls++
	p.UpdatedAt = time.Now()
	c := *p
	m.params = &c
	return nil
}

// mockAccessLogStore implements domain.AccessLogStore for testing.
type mockAccessLogStore struct {
	events    []domain.AccessEvent
	appendErr error
}

func newMockAccessLogStore() *mockAccessLogStore {
	return &mockAccessLogStore{}
}

func (m *mockAccessLogStore) Append(ctx context.Context, e *domain.AccessEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.events = append(m.events, *e)
	return nil
}

// testEnv wires the core services over mock stores the way api.NewApp wires
// them over pgx stores.
type testEnv struct {
	intents      *mockIntentStore
	relations    *mockRelationStore
	persons      *mockPersonStore
	trajectories *mockTrajectoryStore
	baselines    *mockBaselineStore
	params       *mockParamsStore
	access       *mockAccessLogStore

	queue   *ExecutionQueue
	stage   *StageService
	prop    *PropagationService
	anomaly *AnomalyService
	learner *LearnerService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		intents:      newMockIntentStore(),
		relations:    newMockRelationStore(),
		persons:      newMockPersonStore(),
		trajectories: newMockTrajectoryStore(),
		baselines:    newMockBaselineStore(),
		params:       newMockParamsStore(),
		access:       newMockAccessLogStore(),
	}

	logger := testLogger()
	env.queue = NewExecutionQueue(env.params, env.relations, env.persons, env.trajectories, env.access, logger)
	env.stage = NewStageService(env.intents, env.params, env.queue, logger)
	env.prop = NewPropagationService(env.intents, env.relations, env.params, env.stage, logger)
	env.stage.SetPropagator(env.prop)
	env.anomaly = NewAnomalyService(env.baselines, env.params, logger)
	env.learner = NewLearnerService(env.params, logger)
	return env
}
