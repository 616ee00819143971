package underwriting

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/coverledger/coverledger-backend/internal/domain/applicant"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/risk"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/riskmodel"
)

type mockApplicantRepository struct {
	mock.Mock
}

func (m *mockApplicantRepository) Create(ctx context.Context, a *applicant.Applicant) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockApplicantRepository) GetByWallet(ctx context.Context, wallet values.WalletAddress) (*applicant.Applicant, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applicant.Applicant), args.Error(1)
}

type mockPolicyRepository struct {
	mock.Mock
}

func (m *mockPolicyRepository) Create(ctx context.Context, p *policy.Policy) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPolicyRepository) GetByPolicyID(ctx context.Context, policyID string) (*policy.Policy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *mockPolicyRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*policy.Policy, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*policy.Policy), args.Error(1)
}

type mockAssessmentRepository struct {
	mock.Mock
}

func (m *mockAssessmentRepository) Create(ctx context.Context, a *risk.Assessment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAssessmentRepository) GetLatestByApplicant(ctx context.Context, applicantID uuid.UUID) (*risk.Assessment, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*risk.Assessment), args.Error(1)
}

type mockRiskScorer struct {
	mock.Mock
}

func (m *mockRiskScorer) Score(features risk.Features) (riskmodel.Result, error) {
	args := m.Called(features)
	return args.Get(0).(riskmodel.Result), args.Error(1)
}

func (m *mockRiskScorer) Version() string {
	args := m.Called()
	return args.String(0)
}

type mockLedgerGateway struct {
	mock.Mock
}

func (m *mockLedgerGateway) CreatePolicy(ctx context.Context, holder values.WalletAddress, coverage, premium values.Money, durationDays int) (string, error) {
	args := m.Called(ctx, holder, coverage, premium, durationDays)
	return args.String(0), args.Error(1)
}

type mockAssessmentCache struct {
	mock.Mock
}

func (m *mockAssessmentCache) Get(ctx context.Context, wallet values.WalletAddress) (*risk.Assessment, bool) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*risk.Assessment), args.Bool(1)
}

func (m *mockAssessmentCache) Put(ctx context.Context, wallet values.WalletAddress, a *risk.Assessment) {
	m.Called(ctx, wallet, a)
}
