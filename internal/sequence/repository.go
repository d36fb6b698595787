package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB matches the single method we need from *pgxpool.Pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository manages producer-side sequences for published events, one
// monotonically increasing counter per partition key.
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = now()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
