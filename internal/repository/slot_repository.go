package repository

import (
	"context"
	"database/sql"
	"time"
)

// EntriesSlotKey is the fixed namespace key the journal is stored under.
const EntriesSlotKey = "logbook.entries"

// SlotRepository is durable key-value storage for opaque payloads.
type SlotRepository interface {
	// Load returns the payload stored under key, or nil if the slot is
	// absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save writes the payload under key, replacing any previous value.
	Save(ctx context.Context, key string, payload []byte) error
}

type slotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *sql.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return []byte(value), nil
}

func (r *slotRepository) Save(ctx context.Context, key string, payload []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(payload), now)
	return err
}
