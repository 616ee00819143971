package claims

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// Service defines the claims service interface
type Service interface {
	// SubmitClaim files a claim against an existing policy through the ledger
	SubmitClaim(ctx context.Context, req *SubmitRequest) (*claim.Claim, error)
	// GetClaimStatus retrieves a claim by its ledger-assigned identifier,
	// together with the identifier of the claimed policy
	GetClaimStatus(ctx context.Context, claimID string) (*ClaimStatus, error)
}

// PolicyRepository defines the policy lookups the claims workflow needs
type PolicyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error)
	GetByPolicyID(ctx context.Context, policyID string) (*policy.Policy, error)
}

// ClaimRepository defines claim data access
type ClaimRepository interface {
	Create(ctx context.Context, c *claim.Claim) error
	GetByClaimID(ctx context.Context, claimID string) (*claim.Claim, error)
	UpdateStatus(ctx context.Context, claimID string, status claim.Status, processedAt time.Time) error
}

// LedgerGateway submits claim transactions to the blockchain ledger
type LedgerGateway interface {
	ProcessClaim(ctx context.Context, policyID string, amount values.Money, evidenceHash values.EvidenceHash) (string, error)
}

// EvidenceVerifier checks that referenced evidence is actually stored
type EvidenceVerifier interface {
	Exists(ctx context.Context, hash values.EvidenceHash) (bool, error)
}
