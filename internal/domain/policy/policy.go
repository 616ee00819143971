package policy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// Policy is an insurance policy confirmed on the ledger. A Policy row exists
// only after the ledger has assigned a policy ID; it is never mutated by the
// application workflow after creation.
type Policy struct {
	ID          uuid.UUID `json:"id"`
	PolicyID    string    `json:"policy_id"` // ledger-assigned, globally unique
	ApplicantID uuid.UUID `json:"applicant_id"`

	Coverage values.Money `json:"coverage"`
	Premium  values.Money `json:"premium"`
	Status   Status       `json:"status"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	ContractAddress string `json:"contract_address"`
}

type Status int

const (
	StatusActive Status = iota
	StatusExpired
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseStatus converts the persisted string form back to a Status
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "expired":
		return StatusExpired, nil
	case "cancelled":
		return StatusCancelled, nil
	default:
		return StatusActive, fmt.Errorf("unknown policy status: %q", s)
	}
}

// NewPolicy creates a policy from a confirmed ledger receipt. The end date is
// always start date plus the requested duration in days.
func NewPolicy(ledgerPolicyID string, applicantID uuid.UUID, coverage, premium values.Money, durationDays int, contractAddress string) (*Policy, error) {
	if ledgerPolicyID == "" {
		return nil, ErrMissingPolicyID
	}
	if applicantID == uuid.Nil {
		return nil, ErrMissingApplicant
	}
	if durationDays <= 0 {
		return nil, fmt.Errorf("invalid policy duration: %d days", durationDays)
	}
	if premium.IsNegative() {
		return nil, ErrNegativePremium
	}

	start := time.Now().UTC()
	return &Policy{
		ID:              uuid.New(),
		PolicyID:        ledgerPolicyID,
		ApplicantID:     applicantID,
		Coverage:        coverage,
		Premium:         premium,
		Status:          StatusActive,
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, durationDays),
		ContractAddress: contractAddress,
	}, nil
}

// IsActive reports whether the policy is currently claimable
func (p *Policy) IsActive() bool {
	return p.Status == StatusActive
}

var (
	ErrMissingPolicyID  = fmt.Errorf("ledger policy id is required")
	ErrMissingApplicant = fmt.Errorf("applicant id is required")
	ErrNegativePremium  = fmt.Errorf("premium cannot be negative")
)
