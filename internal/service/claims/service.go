// Package claims orchestrates the claim submission workflow: policy lookup,
// evidence verification, ledger claim processing, and persistence.
package claims

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/repository"
)

// SubmitRequest carries a claim filing
type SubmitRequest struct {
	PolicyID     string
	Amount       values.Money
	EvidenceHash values.EvidenceHash
}

// ClaimStatus pairs a claim with the ledger-assigned identifier of the
// policy it was filed against. Claims reference policies by row id, so the
// ledger identifier needs a policy lookup.
type ClaimStatus struct {
	Claim    *claim.Claim
	PolicyID string
}

// service implements the Service interface
type service struct {
	policies PolicyRepository
	claims   ClaimRepository
	ledger   LedgerGateway
	evidence EvidenceVerifier
	logger   *zap.Logger
}

// NewService creates a new claims service. The evidence verifier is
// optional; pass nil when no evidence store is configured.
func NewService(
	policies PolicyRepository,
	claims ClaimRepository,
	ledger LedgerGateway,
	evidence EvidenceVerifier,
	logger *zap.Logger,
) Service {
	return &service{
		policies: policies,
		claims:   claims,
		ledger:   ledger,
		evidence: evidence,
		logger:   logger,
	}
}

// SubmitClaim files a claim. The ledger call is the commit point: the claim
// row is written in processing status only after the contract accepted the
// transaction, and resolution happens later from observed ledger events.
func (s *service) SubmitClaim(ctx context.Context, req *SubmitRequest) (*claim.Claim, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	p, err := s.policies.GetByPolicyID(ctx, req.PolicyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domainErrors.ErrPolicyNotFound
		}
		return nil, domainErrors.NewDatabaseError("failed to load policy").WithCause(err)
	}

	if p.Status != policy.StatusActive {
		return nil, domainErrors.NewClaimError("POLICY_NOT_ACTIVE",
			"claims can only be filed against active policies")
	}

	if s.evidence != nil {
		exists, err := s.evidence.Exists(ctx, req.EvidenceHash)
		if err != nil {
			return nil, domainErrors.NewClaimError("EVIDENCE_CHECK_FAILED",
				"failed to verify claim evidence").WithCause(err)
		}
		if !exists {
			return nil, domainErrors.NewValidationError("EVIDENCE_NOT_FOUND",
				"referenced evidence is not stored")
		}
	}

	claimID, err := s.ledger.ProcessClaim(ctx, req.PolicyID, req.Amount, req.EvidenceHash)
	if err != nil {
		s.logger.Error("ledger claim processing failed",
			zap.String("policy_id", req.PolicyID),
			zap.Error(err))
		return nil, err
	}

	c, err := claim.NewClaim(claimID, p.ID, req.Amount, req.EvidenceHash)
	if err != nil {
		return nil, domainErrors.NewClaimError("CLAIM_INVALID", err.Error())
	}
	if err := s.claims.Create(ctx, c); err != nil {
		// the ledger already accepted this claim; local state now lags the
		// chain until the event observer catches up
		s.logger.Error("claim exists on ledger but failed to persist",
			zap.String("claim_id", claimID),
			zap.String("policy_id", req.PolicyID),
			zap.Error(err))
		return nil, domainErrors.NewDatabaseError("failed to persist claim").WithCause(err)
	}

	s.logger.Info("claim submitted",
		zap.String("claim_id", c.ClaimID),
		zap.String("policy_id", req.PolicyID),
		zap.String("amount", req.Amount.String()))

	return c, nil
}

// GetClaimStatus retrieves a claim by its ledger-assigned identifier
func (s *service) GetClaimStatus(ctx context.Context, claimID string) (*ClaimStatus, error) {
	if claimID == "" {
		return nil, domainErrors.NewValidationError("MISSING_CLAIM_ID", "claim id is required")
	}

	c, err := s.claims.GetByClaimID(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domainErrors.ErrClaimNotFound
		}
		return nil, domainErrors.NewDatabaseError("failed to load claim").WithCause(err)
	}

	// claim rows are only ever written against an existing policy
	p, err := s.policies.GetByID(ctx, c.PolicyID)
	if err != nil {
		return nil, domainErrors.NewDatabaseError("failed to load claimed policy").WithCause(err)
	}

	return &ClaimStatus{Claim: c, PolicyID: p.PolicyID}, nil
}

func validateSubmit(req *SubmitRequest) error {
	if req.PolicyID == "" {
		return domainErrors.NewValidationError("MISSING_POLICY_ID", "policy id is required")
	}
	if !req.Amount.IsPositive() {
		return domainErrors.NewValidationError("INVALID_AMOUNT", "claim amount must be positive")
	}
	if req.EvidenceHash.IsZero() {
		return domainErrors.NewValidationError("MISSING_EVIDENCE", "evidence hash is required")
	}
	return nil
}
