package ledgerevents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/ledger"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/repository"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockSource) Events(ctx context.Context, fromBlock, toBlock uint64) ([]ledger.Event, error) {
	args := m.Called(ctx, fromBlock, toBlock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Event), args.Error(1)
}

// memWatermarks is an in-memory WatermarkStore
type memWatermarks struct {
	blocks map[string]uint64
}

func newMemWatermarks() *memWatermarks {
	return &memWatermarks{blocks: make(map[string]uint64)}
}

func (m *memWatermarks) Get(ctx context.Context, observer string) (uint64, error) {
	return m.blocks[observer], nil
}

func (m *memWatermarks) Set(ctx context.Context, observer string, lastBlock uint64) error {
	m.blocks[observer] = lastBlock
	return nil
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Handle(ctx context.Context, event ledger.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockClaimRepo struct {
	mock.Mock
}

func (m *mockClaimRepo) GetByClaimID(ctx context.Context, claimID string) (*claim.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claim.Claim), args.Error(1)
}

func (m *mockClaimRepo) UpdateStatus(ctx context.Context, claimID string, status claim.Status, processedAt time.Time) error {
	args := m.Called(ctx, claimID, status, processedAt)
	return args.Error(0)
}

func TestPoll_AdvancesWatermark(t *testing.T) {
	source := new(mockSource)
	sink := new(mockSink)
	watermarks := newMemWatermarks()
	obs := NewObserver("claims", source, watermarks, sink, time.Second, zap.NewNop())

	ctx := context.Background()
	event := ledger.Event{Name: ledger.EventClaimProcessed, BlockNumber: 12, ClaimID: "CLM-1", Status: "approved"}

	source.On("BlockNumber", ctx).Return(uint64(15), nil).Once()
	source.On("Events", ctx, uint64(1), uint64(15)).Return([]ledger.Event{event}, nil).Once()
	sink.On("Handle", ctx, event).Return(nil)

	require.NoError(t, obs.Poll(ctx))
	assert.Equal(t, uint64(15), watermarks.blocks["claims"])

	// next poll resumes from the watermark
	source.On("BlockNumber", ctx).Return(uint64(20), nil).Once()
	source.On("Events", ctx, uint64(16), uint64(20)).Return([]ledger.Event{}, nil).Once()

	require.NoError(t, obs.Poll(ctx))
	assert.Equal(t, uint64(20), watermarks.blocks["claims"])
}

func TestPoll_NoNewBlocks(t *testing.T) {
	source := new(mockSource)
	sink := new(mockSink)
	watermarks := newMemWatermarks()
	watermarks.blocks["claims"] = 40

	obs := NewObserver("claims", source, watermarks, sink, time.Second, zap.NewNop())
	ctx := context.Background()

	source.On("BlockNumber", ctx).Return(uint64(40), nil)

	require.NoError(t, obs.Poll(ctx))
	source.AssertNotCalled(t, "Events", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, uint64(40), watermarks.blocks["claims"])
}

func TestPoll_SinkFailureHoldsWatermark(t *testing.T) {
	source := new(mockSource)
	sink := new(mockSink)
	watermarks := newMemWatermarks()
	obs := NewObserver("claims", source, watermarks, sink, time.Second, zap.NewNop())

	ctx := context.Background()
	event := ledger.Event{Name: ledger.EventClaimProcessed, BlockNumber: 5, ClaimID: "CLM-1", Status: "approved"}

	source.On("BlockNumber", ctx).Return(uint64(5), nil)
	source.On("Events", ctx, uint64(1), uint64(5)).Return([]ledger.Event{event}, nil)
	sink.On("Handle", ctx, event).Return(fmt.Errorf("transient db error"))

	require.Error(t, obs.Poll(ctx))
	// the range will be redelivered on the next poll
	assert.Equal(t, uint64(0), watermarks.blocks["claims"])
}

func TestRun_StopsOnCancel(t *testing.T) {
	source := new(mockSource)
	sink := new(mockSink)
	obs := NewObserver("claims", source, newMemWatermarks(), sink, 5*time.Millisecond, zap.NewNop())

	source.On("BlockNumber", mock.Anything).Return(uint64(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- obs.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("observer did not stop on cancel")
	}
}

func TestClaimResolutionSink_ResolvesClaim(t *testing.T) {
	repo := new(mockClaimRepo)
	sink := NewClaimResolutionSink(repo, zap.NewNop())
	ctx := context.Background()

	c, err := claim.NewClaim("CLM-1", uuid.New(),
		values.MustNewMoneyFromFloat(500, values.USD),
		values.MustNewEvidenceHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.NoError(t, err)

	repo.On("GetByClaimID", ctx, "CLM-1").Return(c, nil)
	repo.On("UpdateStatus", ctx, "CLM-1", claim.StatusApproved, mock.AnythingOfType("time.Time")).Return(nil)

	event := ledger.Event{Name: ledger.EventClaimProcessed, ClaimID: "CLM-1", Status: "approved", BlockNumber: 9}
	require.NoError(t, sink.Handle(ctx, event))

	repo.AssertExpectations(t)
}

func TestClaimResolutionSink_SkipsRedeliveredEvent(t *testing.T) {
	repo := new(mockClaimRepo)
	sink := NewClaimResolutionSink(repo, zap.NewNop())
	ctx := context.Background()

	c, err := claim.NewClaim("CLM-1", uuid.New(),
		values.MustNewMoneyFromFloat(500, values.USD),
		values.MustNewEvidenceHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.NoError(t, err)
	require.NoError(t, c.Resolve(claim.StatusApproved, time.Now()))

	repo.On("GetByClaimID", ctx, "CLM-1").Return(c, nil)

	event := ledger.Event{Name: ledger.EventClaimProcessed, ClaimID: "CLM-1", Status: "approved"}
	require.NoError(t, sink.Handle(ctx, event))

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimResolutionSink_SkipsUntrackedAndNonTerminal(t *testing.T) {
	repo := new(mockClaimRepo)
	sink := NewClaimResolutionSink(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("GetByClaimID", ctx, "CLM-X").Return(nil, repository.ErrNotFound)
	require.NoError(t, sink.Handle(ctx, ledger.Event{
		Name: ledger.EventClaimProcessed, ClaimID: "CLM-X", Status: "approved"}))

	require.NoError(t, sink.Handle(ctx, ledger.Event{
		Name: ledger.EventClaimProcessed, ClaimID: "CLM-Y", Status: "processing"}))

	require.NoError(t, sink.Handle(ctx, ledger.Event{
		Name: ledger.EventPolicyCreated, PolicyID: "POL-1"}))

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
