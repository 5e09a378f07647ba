package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IntentStore struct {
	db *pgxpool.Pool
}

func NewIntentStore(db *pgxpool.Pool) *IntentStore {
	return &IntentStore{db: db}
}

func (s *IntentStore) Create(ctx context.Context, i *domain.Intent) error {
	history, err := json.Marshal(i.History)
	if err != nil {
		return fmt.Errorf("marshal stage history: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO intents (title, description, stage, confidence, stage_history, tags, priority, parent_id, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		i.Title, i.Description, i.Stage, i.Confidence, history, i.Tags, i.Priority, i.ParentID, i.Active,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

func (s *IntentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Intent, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, title, description, stage, confidence, stage_history, tags, priority, parent_id, active, created_at, updated_at
		 FROM intents WHERE id = $1`,
		id,
	)
	i, err := scanIntent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (s *IntentStore) Update(ctx context.Context, i *domain.Intent) error {
	history, err := json.Marshal(i.History)
	if err != nil {
		return fmt.Errorf("marshal stage history: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`UPDATE intents
		 SET title = $2, description = $3, stage = $4, confidence = $5, stage_history = $6,
		     tags = $7, priority = $8, active = $9, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		i.ID, i.Title, i.Description, i.Stage, i.Confidence, history, i.Tags, i.Priority, i.Active,
	).Scan(&i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *IntentStore) List(ctx context.Context) ([]domain.Intent, error) {
	return s.list(ctx,
		`SELECT id, title, description, stage, confidence, stage_history, tags, priority, parent_id, active, created_at, updated_at
		 FROM intents ORDER BY created_at DESC`)
}

func (s *IntentStore) ListActive(ctx context.Context) ([]domain.Intent, error) {
	return s.list(ctx,
		`SELECT id, title, description, stage, confidence, stage_history, tags, priority, parent_id, active, created_at, updated_at
		 FROM intents WHERE active ORDER BY created_at DESC`)
}

func (s *IntentStore) list(ctx context.Context, query string) ([]domain.Intent, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []domain.Intent
	for rows.Next() {
		i, err := scanIntent(rows)
		if err != nil {
			return nil, err
		}
		intents = append(intents, *i)
	}
	return intents, rows.Err()
}

func scanIntent(row pgx.Row) (*domain.Intent, error) {
	i := &domain.Intent{}
	var history []byte
	if err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Stage, &i.Confidence, &history,
		&i.Tags, &i.Priority, &i.ParentID, &i.Active, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &i.History); err != nil {
			return nil, fmt.Errorf("unmarshal stage history: %w", err)
		}
	}
	return i, nil
}
