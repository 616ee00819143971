package ledgerevents

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/ledger"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/repository"
)

// ClaimRepository is the claim state the sink updates
type ClaimRepository interface {
	GetByClaimID(ctx context.Context, claimID string) (*claim.Claim, error)
	UpdateStatus(ctx context.Context, claimID string, status claim.Status, processedAt time.Time) error
}

// ClaimResolutionSink moves claims out of processing when the contract emits
// their resolution. Redelivered events are skipped, so at-least-once delivery
// from the observer is safe.
type ClaimResolutionSink struct {
	claims ClaimRepository
	logger *zap.Logger
}

// NewClaimResolutionSink creates the default event sink
func NewClaimResolutionSink(claims ClaimRepository, logger *zap.Logger) *ClaimResolutionSink {
	return &ClaimResolutionSink{
		claims: claims,
		logger: logger,
	}
}

// Handle applies one contract event. Unknown event names and claims that are
// not tracked locally are logged and skipped, not errors.
func (s *ClaimResolutionSink) Handle(ctx context.Context, event ledger.Event) error {
	switch event.Name {
	case ledger.EventClaimProcessed:
		return s.handleClaimProcessed(ctx, event)
	case ledger.EventPolicyCreated:
		// policies are written by the submission path; nothing to apply
		return nil
	default:
		s.logger.Debug("ignoring unknown ledger event",
			zap.String("event", event.Name),
			zap.Uint64("block", event.BlockNumber))
		return nil
	}
}

func (s *ClaimResolutionSink) handleClaimProcessed(ctx context.Context, event ledger.Event) error {
	status, err := claim.ParseStatus(event.Status)
	if err != nil || (status != claim.StatusApproved && status != claim.StatusRejected) {
		s.logger.Warn("claim event with non-terminal status",
			zap.String("claim_id", event.ClaimID),
			zap.String("status", event.Status))
		return nil
	}

	c, err := s.claims.GetByClaimID(ctx, event.ClaimID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("claim event for untracked claim",
				zap.String("claim_id", event.ClaimID),
				zap.Uint64("block", event.BlockNumber))
			return nil
		}
		return err
	}

	if err := c.Resolve(status, time.Now()); err != nil {
		if errors.Is(err, claim.ErrAlreadyResolved) {
			return nil
		}
		return err
	}

	if err := s.claims.UpdateStatus(ctx, c.ClaimID, status, *c.ProcessedAt); err != nil {
		return err
	}

	s.logger.Info("claim resolved from ledger event",
		zap.String("claim_id", c.ClaimID),
		zap.String("status", status.String()),
		zap.Uint64("block", event.BlockNumber))
	return nil
}
