package underwriting

import (
	"context"

	"github.com/google/uuid"

	"github.com/coverledger/coverledger-backend/internal/domain/applicant"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/risk"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/riskmodel"
)

// Service defines the underwriting service interface
type Service interface {
	// ApplyForInsurance runs the full application workflow: risk scoring,
	// premium quoting, ledger policy creation, and persistence
	ApplyForInsurance(ctx context.Context, req *ApplicationRequest) (*ApplicationResult, error)
	// AssessRisk scores an applicant profile without creating a policy
	AssessRisk(ctx context.Context, req *RiskRequest) (*RiskResult, error)
	// GetPolicy retrieves a policy by its ledger-assigned identifier
	GetPolicy(ctx context.Context, policyID string) (*policy.Policy, error)
	// GetUserPolicies lists all policies held by a wallet address
	GetUserPolicies(ctx context.Context, wallet values.WalletAddress) ([]*policy.Policy, error)
}

// ApplicantRepository defines applicant data access
type ApplicantRepository interface {
	Create(ctx context.Context, a *applicant.Applicant) error
	GetByWallet(ctx context.Context, wallet values.WalletAddress) (*applicant.Applicant, error)
}

// PolicyRepository defines policy data access
type PolicyRepository interface {
	Create(ctx context.Context, p *policy.Policy) error
	GetByPolicyID(ctx context.Context, policyID string) (*policy.Policy, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*policy.Policy, error)
}

// AssessmentRepository defines risk assessment data access
type AssessmentRepository interface {
	Create(ctx context.Context, a *risk.Assessment) error
	GetLatestByApplicant(ctx context.Context, applicantID uuid.UUID) (*risk.Assessment, error)
}

// RiskScorer evaluates applicant features against the trained model
type RiskScorer interface {
	Score(features risk.Features) (riskmodel.Result, error)
	Version() string
}

// LedgerGateway submits policy transactions to the blockchain ledger
type LedgerGateway interface {
	CreatePolicy(ctx context.Context, holder values.WalletAddress, coverage, premium values.Money, durationDays int) (string, error)
}

// AssessmentCache stores recent risk scores keyed by wallet address
type AssessmentCache interface {
	Get(ctx context.Context, wallet values.WalletAddress) (*risk.Assessment, bool)
	Put(ctx context.Context, wallet values.WalletAddress, a *risk.Assessment)
}
