package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

type mockPolicyRepository struct {
	mock.Mock
}

func (m *mockPolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *mockPolicyRepository) GetByPolicyID(ctx context.Context, policyID string) (*policy.Policy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

type mockClaimRepository struct {
	mock.Mock
}

func (m *mockClaimRepository) Create(ctx context.Context, c *claim.Claim) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockClaimRepository) GetByClaimID(ctx context.Context, claimID string) (*claim.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claim.Claim), args.Error(1)
}

func (m *mockClaimRepository) UpdateStatus(ctx context.Context, claimID string, status claim.Status, processedAt time.Time) error {
	args := m.Called(ctx, claimID, status, processedAt)
	return args.Error(0)
}

type mockLedgerGateway struct {
	mock.Mock
}

func (m *mockLedgerGateway) ProcessClaim(ctx context.Context, policyID string, amount values.Money, evidenceHash values.EvidenceHash) (string, error) {
	args := m.Called(ctx, policyID, amount, evidenceHash)
	return args.String(0), args.Error(1)
}

type mockEvidenceVerifier struct {
	mock.Mock
}

func (m *mockEvidenceVerifier) Exists(ctx context.Context, hash values.EvidenceHash) (bool, error) {
	args := m.Called(ctx, hash)
	return args.Bool(0), args.Error(1)
}
