package claim

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// Claim is an insurance claim against a policy. The workflow records claims
// in processing status once the ledger call succeeds; terminal statuses are
// set from observed ledger events, not by the submission path.
type Claim struct {
	ID       uuid.UUID `json:"id"`
	ClaimID  string    `json:"claim_id"` // ledger-assigned, globally unique
	PolicyID uuid.UUID `json:"policy_id"`

	Amount       values.Money        `json:"amount"`
	Status       Status              `json:"status"`
	EvidenceHash values.EvidenceHash `json:"evidence_hash"`

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusApproved
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ParseStatus converts the persisted string form back to a Status
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "processing":
		return StatusProcessing, nil
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return StatusPending, fmt.Errorf("unknown claim status: %q", s)
	}
}

// NewClaim creates a claim in processing status, recorded immediately after
// the ledger accepted the claim transaction.
func NewClaim(claimID string, policyID uuid.UUID, amount values.Money, evidence values.EvidenceHash) (*Claim, error) {
	if claimID == "" {
		return nil, ErrMissingClaimID
	}
	if policyID == uuid.Nil {
		return nil, ErrMissingPolicy
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if evidence.IsZero() {
		return nil, ErrMissingEvidence
	}

	return &Claim{
		ID:           uuid.New(),
		ClaimID:      claimID,
		PolicyID:     policyID,
		Amount:       amount,
		Status:       StatusProcessing,
		EvidenceHash: evidence,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Resolve moves the claim to a terminal status. Only approved and rejected
// are terminal; anything else is a caller bug.
func (c *Claim) Resolve(status Status, at time.Time) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("cannot resolve claim to non-terminal status %s", status)
	}
	if c.Status == StatusApproved || c.Status == StatusRejected {
		return ErrAlreadyResolved
	}

	c.Status = status
	t := at.UTC()
	c.ProcessedAt = &t
	return nil
}

var (
	ErrMissingClaimID  = fmt.Errorf("claim id is required")
	ErrMissingPolicy   = fmt.Errorf("policy id is required")
	ErrInvalidAmount   = fmt.Errorf("claim amount must be positive")
	ErrMissingEvidence = fmt.Errorf("evidence hash is required")
	ErrAlreadyResolved = fmt.Errorf("claim is already resolved")
)
