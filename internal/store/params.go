package store

import (
	"context"

	"github.com/intentlab/intentd/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ParamsStore persists the singleton system parameters as a single
// constrained row. Get is an atomic get-or-create seeded with defaults.
type ParamsStore struct {
	db *pgxpool.Pool
}

func NewParamsStore(db *pgxpool.Pool) *ParamsStore {
	return &ParamsStore{db: db}
}

func (s *ParamsStore) Get(ctx context.Context) (*domain.SystemParameters, error) {
	p := &domain.SystemParameters{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO system_parameters (id, anomaly_threshold, execution_threshold, decay_rate)
		 VALUES (TRUE, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET id = system_parameters.id
		 RETURNING anomaly_threshold, execution_threshold, decay_rate, updated_at`,
		domain.DefaultAnomalyThreshold, domain.DefaultExecutionThreshold, domain.DefaultDecayRate,
	).Scan(&p.AnomalyThreshold, &p.ExecutionThreshold, &p.DecayRate, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ParamsStore) Update(ctx context.Context, p *domain.SystemParameters) error {
	return s.db.QueryRow(ctx,
		`UPDATE system_parameters
		 SET anomaly_threshold = $1, execution_threshold = $2, decay_rate = $3, updated_at = NOW()
		 WHERE id = TRUE
		 RETURNING updated_at`,
		p.AnomalyThreshold, p.ExecutionThreshold, p.DecayRate,
	).Scan(&p.UpdatedAt)
}
