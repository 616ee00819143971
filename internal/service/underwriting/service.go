// Package underwriting orchestrates the insurance application workflow:
// applicant resolution, risk scoring, premium quoting, ledger policy
// creation, and persistence.
package underwriting

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/coverledger/coverledger-backend/internal/domain/applicant"
	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/risk"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/repository"
)

// service implements the Service interface
type service struct {
	applicants      ApplicantRepository
	policies        PolicyRepository
	assessments     AssessmentRepository
	scorer          RiskScorer
	ledger          LedgerGateway
	cache           AssessmentCache
	contractAddress string
	logger          *zap.Logger
}

// NewService creates a new underwriting service. The cache is optional;
// pass nil to score every request.
func NewService(
	applicants ApplicantRepository,
	policies PolicyRepository,
	assessments AssessmentRepository,
	scorer RiskScorer,
	ledger LedgerGateway,
	cache AssessmentCache,
	contractAddress string,
	logger *zap.Logger,
) Service {
	return &service{
		applicants:      applicants,
		policies:        policies,
		assessments:     assessments,
		scorer:          scorer,
		ledger:          ledger,
		cache:           cache,
		contractAddress: contractAddress,
		logger:          logger,
	}
}

// ApplyForInsurance runs the full application workflow. The ledger call is
// the commit point: nothing is persisted until the contract has assigned a
// policy identifier, so a ledger failure leaves no partial policy behind.
func (s *service) ApplyForInsurance(ctx context.Context, req *ApplicationRequest) (*ApplicationResult, error) {
	if err := validateApplication(req); err != nil {
		return nil, err
	}

	a, err := s.resolveApplicant(ctx, req)
	if err != nil {
		return nil, err
	}

	scored, err := s.scorer.Score(req.features())
	if err != nil {
		return nil, err
	}

	premium := CalculatePremium(req.Coverage, scored.Score)

	ledgerPolicyID, err := s.ledger.CreatePolicy(ctx, req.Wallet, req.Coverage, premium, req.DurationDays)
	if err != nil {
		s.logger.Error("ledger policy creation failed",
			zap.String("wallet", req.Wallet.String()),
			zap.Error(err))
		return nil, err
	}

	p, err := policy.NewPolicy(ledgerPolicyID, a.ID, req.Coverage, premium, req.DurationDays, s.contractAddress)
	if err != nil {
		return nil, domainErrors.NewPolicyError("POLICY_INVALID", err.Error())
	}
	if err := s.policies.Create(ctx, p); err != nil {
		// the ledger already committed this policy; local state now lags the
		// chain until reconciled
		s.logger.Error("policy exists on ledger but failed to persist",
			zap.String("policy_id", ledgerPolicyID),
			zap.String("wallet", req.Wallet.String()),
			zap.Error(err))
		return nil, domainErrors.NewDatabaseError("failed to persist policy").WithCause(err)
	}

	assessment, err := risk.NewAssessment(a.ID, scored.Score, scored.Factors, scored.Version)
	if err != nil {
		return nil, domainErrors.NewInternalError(err.Error())
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		s.logger.Error("policy persisted but risk assessment write failed",
			zap.String("policy_id", ledgerPolicyID),
			zap.Error(err))
		return nil, domainErrors.NewDatabaseError("failed to persist risk assessment").WithCause(err)
	}

	if s.cache != nil {
		s.cache.Put(ctx, req.Wallet, assessment)
	}

	s.logger.Info("policy underwritten",
		zap.String("policy_id", p.PolicyID),
		zap.String("wallet", req.Wallet.String()),
		zap.Float64("risk_score", scored.Score),
		zap.String("premium", premium.String()))

	return &ApplicationResult{
		Policy:     p,
		Assessment: assessment,
		Premium:    premium,
	}, nil
}

// AssessRisk scores a profile without side effects on the ledger. Recent
// scores for the same wallet are served from the cache.
func (s *service) AssessRisk(ctx context.Context, req *RiskRequest) (*RiskResult, error) {
	if req.Wallet.IsZero() {
		return nil, domainErrors.NewValidationError("MISSING_WALLET", "wallet address is required")
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, req.Wallet); ok {
			return &RiskResult{
				Score:        cached.Score,
				Factors:      cached.Factors,
				ModelVersion: cached.ModelVersion,
				Cached:       true,
			}, nil
		}
	}

	scored, err := s.scorer.Score(req.features())
	if err != nil {
		return nil, err
	}

	return &RiskResult{
		Score:        scored.Score,
		Factors:      scored.Factors,
		ModelVersion: scored.Version,
	}, nil
}

// GetPolicy retrieves a policy by its ledger-assigned identifier
func (s *service) GetPolicy(ctx context.Context, policyID string) (*policy.Policy, error) {
	if policyID == "" {
		return nil, domainErrors.NewValidationError("MISSING_POLICY_ID", "policy id is required")
	}

	p, err := s.policies.GetByPolicyID(ctx, policyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domainErrors.ErrPolicyNotFound
		}
		return nil, domainErrors.NewDatabaseError("failed to load policy").WithCause(err)
	}

	return p, nil
}

// GetUserPolicies lists policies held by a wallet. An unknown wallet is not
// an error; it holds no policies.
func (s *service) GetUserPolicies(ctx context.Context, wallet values.WalletAddress) ([]*policy.Policy, error) {
	if wallet.IsZero() {
		return nil, domainErrors.NewValidationError("MISSING_WALLET", "wallet address is required")
	}

	a, err := s.applicants.GetByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []*policy.Policy{}, nil
		}
		return nil, domainErrors.NewDatabaseError("failed to load applicant").WithCause(err)
	}

	policies, err := s.policies.ListByApplicant(ctx, a.ID)
	if err != nil {
		return nil, domainErrors.NewDatabaseError("failed to list policies").WithCause(err)
	}

	return policies, nil
}

// resolveApplicant finds the applicant for the wallet, creating the profile
// on first application.
func (s *service) resolveApplicant(ctx context.Context, req *ApplicationRequest) (*applicant.Applicant, error) {
	a, err := s.applicants.GetByWallet(ctx, req.Wallet)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, domainErrors.NewDatabaseError("failed to load applicant").WithCause(err)
	}

	a, err = applicant.NewApplicant(req.Wallet, req.Age, req.CreditScore, req.Occupation)
	if err != nil {
		return nil, domainErrors.NewValidationError("INVALID_APPLICANT", err.Error())
	}
	a.Income = req.Income

	if err := s.applicants.Create(ctx, a); err != nil {
		// lost a race with a concurrent application for the same wallet
		if errors.Is(err, repository.ErrDuplicateKey) {
			existing, getErr := s.applicants.GetByWallet(ctx, req.Wallet)
			if getErr != nil {
				return nil, domainErrors.NewDatabaseError("failed to load applicant").WithCause(getErr)
			}
			return existing, nil
		}
		return nil, domainErrors.NewDatabaseError("failed to create applicant").WithCause(err)
	}

	s.logger.Info("applicant created", zap.String("wallet", req.Wallet.String()))
	return a, nil
}

func validateApplication(req *ApplicationRequest) error {
	if req.Wallet.IsZero() {
		return domainErrors.NewValidationError("MISSING_WALLET", "wallet address is required")
	}
	if !req.Coverage.IsPositive() {
		return domainErrors.NewValidationError("INVALID_COVERAGE", "coverage amount must be positive")
	}
	if req.DurationDays <= 0 {
		return domainErrors.NewValidationError("INVALID_DURATION", "policy duration must be positive")
	}
	return nil
}
