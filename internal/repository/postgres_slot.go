package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type postgresSlot struct {
	db  *sql.DB
	key string
}

// NewPostgresSlot stores the document in the storage_slots table, one row per key
func NewPostgresSlot(db *sql.DB, key string) Slot {
	return &postgresSlot{db: db, key: key}
}

func (s *postgresSlot) Name() string {
	return "postgres:" + s.key
}

// Load retrieves the document using a parameterized query
func (s *postgresSlot) Load(ctx context.Context) ([]byte, error) {
	query := `SELECT data FROM storage_slots WHERE key = $1`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to load slot %s: %w", s.key, err)
	}
	return data, nil
}

// Save upserts the document
func (s *postgresSlot) Save(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO storage_slots (key, data, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", s.key, err)
	}
	return nil
}
