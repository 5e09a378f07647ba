package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PersonStore struct {
	db *pgxpool.Pool
}

func NewPersonStore(db *pgxpool.Pool) *PersonStore {
	return &PersonStore{db: db}
}

func (s *PersonStore) Upsert(ctx context.Context, p *domain.Person) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO persons (name, role, confidence)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		 SET role = CASE WHEN EXCLUDED.role <> '' THEN EXCLUDED.role ELSE persons.role END,
		     confidence = GREATEST(persons.confidence, EXCLUDED.confidence),
		     updated_at = NOW()
		 RETURNING id, role, confidence, created_at, updated_at`,
		p.Name, p.Role, p.Confidence,
	).Scan(&p.ID, &p.Role, &p.Confidence, &p.CreatedAt, &p.UpdatedAt)
}

func (s *PersonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	p := &domain.Person{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, role, confidence, created_at, updated_at
		 FROM persons WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Role, &p.Confidence, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PersonStore) GetByName(ctx context.Context, name string) (*domain.Person, error) {
	p := &domain.Person{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, role, confidence, created_at, updated_at
		 FROM persons WHERE LOWER(name) = LOWER($1)`,
		name,
	).Scan(&p.ID, &p.Name, &p.Role, &p.Confidence, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
