package domain

import (
	"context"

	"github.com/google/uuid"
)

type IntentStore interface {
	Create(ctx context.Context, i *Intent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Intent, error)
	Update(ctx context.Context, i *Intent) error
	List(ctx context.Context) ([]Intent, error)
	ListActive(ctx context.Context) ([]Intent, error)
}

type RelationStore interface {
	Create(ctx context.Context, r *Relation) error
	ListByTarget(ctx context.Context, targetType EndpointType, targetID uuid.UUID) ([]Relation, error)
	ListBySource(ctx context.Context, sourceType EndpointType, sourceID uuid.UUID) ([]Relation, error)
}

type PersonStore interface {
	Upsert(ctx context.Context, p *Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*Person, error)
	GetByName(ctx context.Context, name string) (*Person, error)
}

type TrajectoryStore interface {
	Create(ctx context.Context, t *Trajectory) error
	List(ctx context.Context) ([]Trajectory, error)
}

// BaselineStore owns the singleton baseline row. Get creates the row
// atomically with a zero prior if it does not exist yet.
type BaselineStore interface {
	Get(ctx context.Context) (*Baseline, error)
	Update(ctx context.Context, b *Baseline) error
}

// ParamsStore owns the singleton system parameters row. Get creates the row
// atomically with defaults if it does not exist yet.
type ParamsStore interface {
	Get(ctx context.Context) (*SystemParameters, error)
	Update(ctx context.Context, p *SystemParameters) error
}

type AccessLogStore interface {
	Append(ctx context.Context, e *AccessEvent) error
}
