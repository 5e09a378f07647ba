package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RelationStore struct {
	db *pgxpool.Pool
}

func NewRelationStore(db *pgxpool.Pool) *RelationStore {
	return &RelationStore{db: db}
}

func (s *RelationStore) Create(ctx context.Context, r *domain.Relation) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO relations (source_type, source_id, target_type, target_id, label, weight)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (source_type, source_id, target_type, target_id, label) DO UPDATE
		 SET weight = EXCLUDED.weight
		 RETURNING id, created_at`,
		r.SourceType, r.SourceID, r.TargetType, r.TargetID, r.Label, r.Weight,
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *RelationStore) ListByTarget(ctx context.Context, targetType domain.EndpointType, targetID uuid.UUID) ([]domain.Relation, error) {
	return s.list(ctx,
		`SELECT id, source_type, source_id, target_type, target_id, label, weight, created_at
		 FROM relations WHERE target_type = $1 AND target_id = $2`,
		targetType, targetID)
}

func (s *RelationStore) ListBySource(ctx context.Context, sourceType domain.EndpointType, sourceID uuid.UUID) ([]domain.Relation, error) {
	return s.list(ctx,
		`SELECT id, source_type, source_id, target_type, target_id, label, weight, created_at
		 FROM relations WHERE source_type = $1 AND source_id = $2`,
		sourceType, sourceID)
}

func (s *RelationStore) list(ctx context.Context, query string, args ...any) ([]domain.Relation, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []domain.Relation
	for rows.Next() {
		var r domain.Relation
		if err := rows.Scan(&r.ID, &r.SourceType, &r.SourceID, &r.TargetType, &r.TargetID,
			&r.Label, &r.Weight, &r.CreatedAt); err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}
	return relations, rows.Err()
}
