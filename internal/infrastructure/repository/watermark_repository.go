package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// watermarkRepository tracks the last ledger block processed per observer.
// The watermark survives restarts so event delivery is at-least-once.
type watermarkRepository struct {
	db *pgxpool.Pool
}

// NewWatermarkRepository creates a new watermark repository
func NewWatermarkRepository(db *pgxpool.Pool) *watermarkRepository {
	return &watermarkRepository{db: db}
}

// Get returns the stored watermark for the named observer, or 0 when the
// observer has never checkpointed.
func (r *watermarkRepository) Get(ctx context.Context, observer string) (uint64, error) {
	query := `SELECT last_block FROM ledger_watermarks WHERE observer = $1`

	var lastBlock uint64
	err := r.db.QueryRow(ctx, query, observer).Scan(&lastBlock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get watermark: %w", err)
	}

	return lastBlock, nil
}

// Set upserts the watermark for the named observer
func (r *watermarkRepository) Set(ctx context.Context, observer string, lastBlock uint64) error {
	query := `
		INSERT INTO ledger_watermarks (observer, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (observer) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`

	if _, err := r.db.Exec(ctx, query, observer, lastBlock); err != nil {
		return fmt.Errorf("failed to set watermark: %w", err)
	}

	return nil
}
