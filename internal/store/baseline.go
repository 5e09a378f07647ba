package store

import (
	"context"

	"github.com/intentlab/intentd/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaselineStore persists the singleton anomaly baseline as a single
// constrained row. Get is an atomic get-or-create.
type BaselineStore struct {
	db *pgxpool.Pool
}

func NewBaselineStore(db *pgxpool.Pool) *BaselineStore {
	return &BaselineStore{db: db}
}

func (s *BaselineStore) Get(ctx context.Context) (*domain.Baseline, error) {
	b := &domain.Baseline{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO baseline (id) VALUES (TRUE)
		 ON CONFLICT (id) DO UPDATE SET id = baseline.id
		 RETURNING sample_count,
		           length_mean, length_m2, length_variance,
		           hour_mean, hour_m2, hour_variance,
		           updated_at`,
	).Scan(&b.Count,
		&b.Length.Mean, &b.Length.M2, &b.Length.Variance,
		&b.Hour.Mean, &b.Hour.M2, &b.Hour.Variance,
		&b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BaselineStore) Update(ctx context.Context, b *domain.Baseline) error {
	return s.db.QueryRow(ctx,
		`UPDATE baseline
		 SET sample_count = $1,
		     length_mean = $2, length_m2 = $3, length_variance = $4,
		     hour_mean = $5, hour_m2 = $6, hour_variance = $7,
		     updated_at = NOW()
		 WHERE id = TRUE
		 RETURNING updated_at`,
		b.Count,
		b.Length.Mean, b.Length.M2, b.Length.Variance,
		b.Hour.Mean, b.Hour.M2, b.Hour.Variance,
	).Scan(&b.UpdatedAt)
}
