package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// claimRepository implements claim persistence using PostgreSQL
type claimRepository struct {
	db *pgxpool.Pool
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *pgxpool.Pool) *claimRepository {
	return &claimRepository{db: db}
}

// Create inserts a new claim
func (r *claimRepository) Create(ctx context.Context, c *claim.Claim) error {
	query := `
		INSERT INTO claims (
			id, claim_id, policy_id, amount, status, evidence_hash, created_at, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var evidenceHash sql.NullString
	if !c.EvidenceHash.IsZero() {
		evidenceHash = sql.NullString{String: c.EvidenceHash.String(), Valid: true}
	}

	_, err := r.db.Exec(ctx, query,
		c.ID, c.ClaimID, c.PolicyID, c.Amount, c.Status.String(), evidenceHash,
		c.CreatedAt, c.ProcessedAt,
	)
	if err != nil {
		if IsDuplicateKeyViolation(err) {
			return fmt.Errorf("claim %s: %w", c.ClaimID, ErrDuplicateKey)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("claim %s references unknown policy: %w", c.ClaimID, ErrForeignKey)
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// GetByClaimID retrieves a claim by its ledger-assigned identifier
func (r *claimRepository) GetByClaimID(ctx context.Context, claimID string) (*claim.Claim, error) {
	query := `
		SELECT id, claim_id, policy_id, amount, status, evidence_hash, created_at, processed_at
		FROM claims
		WHERE claim_id = $1
	`

	var c claim.Claim
	var statusStr string
	var amount values.Money
	var evidenceHash sql.NullString
	var processedAt *time.Time

	err := r.db.QueryRow(ctx, query, claimID).Scan(
		&c.ID, &c.ClaimID, &c.PolicyID, &amount, &statusStr, &evidenceHash,
		&c.CreatedAt, &processedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	status, err := claim.ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}

	c.Amount = amount
	c.Status = status
	c.ProcessedAt = processedAt
	if evidenceHash.Valid {
		hash, err := values.NewEvidenceHash(evidenceHash.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored evidence hash: %w", err)
		}
		c.EvidenceHash = hash
	}

	return &c, nil
}

// UpdateStatus records the resolution of a claim
func (r *claimRepository) UpdateStatus(ctx context.Context, claimID string, status claim.Status, processedAt time.Time) error {
	query := `
		UPDATE claims
		SET status = $2, processed_at = $3
		WHERE claim_id = $1
	`

	tag, err := r.db.Exec(ctx, query, claimID, status.String(), processedAt)
	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
