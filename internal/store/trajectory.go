package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/intentlab/intentd/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TrajectoryStore struct {
	db *pgxpool.Pool
}

func NewTrajectoryStore(db *pgxpool.Pool) *TrajectoryStore {
	return &TrajectoryStore{db: db}
}

func (s *TrajectoryStore) Create(ctx context.Context, t *domain.Trajectory) error {
	milestones, err := json.Marshal(t.Milestones)
	if err != nil {
		return fmt.Errorf("marshal milestones: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO trajectories (title, milestones)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		t.Title, milestones,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (s *TrajectoryStore) List(ctx context.Context) ([]domain.Trajectory, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, milestones, created_at, updated_at
		 FROM trajectories ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trajectories []domain.Trajectory
	for rows.Next() {
		var t domain.Trajectory
		var milestones []byte
		if err := rows.Scan(&t.ID, &t.Title, &milestones, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if len(milestones) > 0 {
			if err := json.Unmarshal(milestones, &t.Milestones); err != nil {
				return nil, fmt.Errorf("unmarshal milestones: %w", err)
			}
		}
		trajectories = append(trajectories, t)
	}
	return trajectories, rows.Err()
}
