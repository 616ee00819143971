package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coverledger/coverledger-backend/internal/domain/risk"
)

// assessmentRepository implements risk assessment persistence using PostgreSQL.
// Risk factor flags are stored as a jsonb array.
type assessmentRepository struct {
	db *pgxpool.Pool
}

// NewAssessmentRepository creates a new risk assessment repository
func NewAssessmentRepository(db *pgxpool.Pool) *assessmentRepository {
	return &assessmentRepository{db: db}
}

// Create inserts a new risk assessment
func (r *assessmentRepository) Create(ctx context.Context, a *risk.Assessment) error {
	query := `
		INSERT INTO risk_assessments (
			id, applicant_id, risk_score, factors, model_version, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID, a.ApplicantID, a.Score, a.Factors, a.ModelVersion, a.AssessedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("assessment references unknown applicant: %w", ErrForeignKey)
		}
		return fmt.Errorf("failed to create risk assessment: %w", err)
	}

	return nil
}

// GetLatestByApplicant returns the most recent assessment for an applicant
func (r *assessmentRepository) GetLatestByApplicant(ctx context.Context, applicantID uuid.UUID) (*risk.Assessment, error) {
	query := `
		SELECT id, applicant_id, risk_score, factors, model_version, assessed_at
		FROM risk_assessments
		WHERE applicant_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`

	var a risk.Assessment
	err := r.db.QueryRow(ctx, query, applicantID).Scan(
		&a.ID, &a.ApplicantID, &a.Score, &a.Factors, &a.ModelVersion, &a.AssessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get risk assessment: %w", err)
	}
	if a.Factors == nil {
		a.Factors = []string{}
	}

	return &a, nil
}
