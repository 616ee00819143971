package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// policyRepository implements policy persistence using PostgreSQL
type policyRepository struct {
	db *pgxpool.Pool
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *pgxpool.Pool) *policyRepository {
	return &policyRepository{db: db}
}

// Create inserts a new policy
func (r *policyRepository) Create(ctx context.Context, p *policy.Policy) error {
	query := `
		INSERT INTO policies (
			id, policy_id, applicant_id, coverage_amount, premium, status,
			start_date, end_date, contract_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.PolicyID, p.ApplicantID, p.Coverage, p.Premium, p.Status.String(),
		p.StartDate, p.EndDate, p.ContractAddress,
	)
	if err != nil {
		if IsDuplicateKeyViolation(err) {
			return fmt.Errorf("policy %s: %w", p.PolicyID, ErrDuplicateKey)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("policy %s references unknown applicant: %w", p.PolicyID, ErrForeignKey)
		}
		return fmt.Errorf("failed to create policy: %w", err)
	}

	return nil
}

// GetByID retrieves a policy by its internal row identifier
func (r *policyRepository) GetByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	query := `
		SELECT id, policy_id, applicant_id, coverage_amount, premium, status,
		       start_date, end_date, contract_address
		FROM policies
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByPolicyID retrieves a policy by its ledger-assigned identifier
func (r *policyRepository) GetByPolicyID(ctx context.Context, policyID string) (*policy.Policy, error) {
	query := `
		SELECT id, policy_id, applicant_id, coverage_amount, premium, status,
		       start_date, end_date, contract_address
		FROM policies
		WHERE policy_id = $1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, policyID))
}

// ListByApplicant returns all policies held by an applicant, newest first
func (r *policyRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*policy.Policy, error) {
	query := `
		SELECT id, policy_id, applicant_id, coverage_amount, premium, status,
		       start_date, end_date, contract_address
		FROM policies
		WHERE applicant_id = $1
		ORDER BY start_date DESC
	`

	rows, err := r.db.Query(ctx, query, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	policies := []*policy.Policy{}
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate policies: %w", err)
	}

	return policies, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *policyRepository) scanOne(row pgx.Row) (*policy.Policy, error) {
	p, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *policyRepository) scanRow(row rowScanner) (*policy.Policy, error) {
	var p policy.Policy
	var statusStr string
	var coverage, premium values.Money

	err := row.Scan(
		&p.ID, &p.PolicyID, &p.ApplicantID, &coverage, &premium, &statusStr,
		&p.StartDate, &p.EndDate, &p.ContractAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan policy: %w", err)
	}

	status, err := policy.ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}

	p.Coverage = coverage
	p.Premium = premium
	p.Status = status
	return &p, nil
}
