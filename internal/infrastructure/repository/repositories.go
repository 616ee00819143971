package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all repository implementations sharing one pool
type Repositories struct {
	Applicant  *applicantRepository
	Policy     *policyRepository
	Claim      *claimRepository
	Assessment *assessmentRepository
	Watermark  *watermarkRepository
}

// NewRepositories creates all repositories backed by the given pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Applicant:  NewApplicantRepository(db),
		Policy:     NewPolicyRepository(db),
		Claim:      NewClaimRepository(db),
		Assessment: NewAssessmentRepository(db),
		Watermark:  NewWatermarkRepository(db),
	}
}
