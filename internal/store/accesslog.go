package store

import (
	"context"

	"github.com/intentlab/intentd/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccessLogStore struct {
	db *pgxpool.Pool
}

func NewAccessLogStore(db *pgxpool.Pool) *AccessLogStore {
	return &AccessLogStore{db: db}
}

func (s *AccessLogStore) Append(ctx context.Context, e *domain.AccessEvent) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO access_log (kind, ref_id, detail)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		e.Kind, e.RefID, e.Detail,
	).Scan(&e.ID, &e.CreatedAt)
}
