package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coverledger/coverledger-backend/internal/domain/applicant"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// applicantRepository implements applicant persistence using PostgreSQL
type applicantRepository struct {
	db *pgxpool.Pool
}

// NewApplicantRepository creates a new applicant repository
func NewApplicantRepository(db *pgxpool.Pool) *applicantRepository {
	return &applicantRepository{db: db}
}

// Create inserts a new applicant
func (r *applicantRepository) Create(ctx context.Context, a *applicant.Applicant) error {
	query := `
		INSERT INTO applicants (
			id, wallet_address, age, credit_score, occupation, income, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID, a.WalletAddress, a.Age, a.CreditScore, a.Occupation, a.Income, a.CreatedAt,
	)
	if err != nil {
		if IsDuplicateKeyViolation(err) {
			return fmt.Errorf("applicant %s: %w", a.WalletAddress, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create applicant: %w", err)
	}

	return nil
}

// GetByWallet retrieves an applicant by wallet address
func (r *applicantRepository) GetByWallet(ctx context.Context, wallet values.WalletAddress) (*applicant.Applicant, error) {
	query := `
		SELECT id, wallet_address, age, credit_score, occupation, income, created_at
		FROM applicants
		WHERE wallet_address = $1
	`

	var a applicant.Applicant
	err := r.db.QueryRow(ctx, query, wallet).Scan(
		&a.ID, &a.WalletAddress, &a.Age, &a.CreditScore, &a.Occupation, &a.Income, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}

	return &a, nil
}
