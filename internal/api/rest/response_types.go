package rest

import (
	"time"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
)

// PolicyResponse is the wire form of a policy
type PolicyResponse struct {
	PolicyID        string    `json:"policy_id"`
	CoverageAmount  float64   `json:"coverage_amount"`
	Premium         float64   `json:"premium"`
	Status          string    `json:"status"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	ContractAddress string    `json:"contract_address"`
}

// ApplyInsuranceResponse is returned by POST /apply-insurance
type ApplyInsuranceResponse struct {
	PolicyResponse
	RiskScore   float64  `json:"risk_score"`
	RiskFactors []string `json:"risk_factors"`
}

// RiskAssessmentResponse is returned by POST /risk-assessment
type RiskAssessmentResponse struct {
	RiskScore    float64  `json:"risk_score"`
	RiskFactors  []string `json:"risk_factors"`
	ModelVersion string   `json:"model_version,omitempty"`
	Cached       bool     `json:"cached"`
}

// ClaimResponse is the wire form of a claim
type ClaimResponse struct {
	ClaimID      string     `json:"claim_id"`
	PolicyID     string     `json:"policy_id,omitempty"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	EvidenceHash string     `json:"evidence_hash,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// UserPoliciesResponse is returned by GET /user-policies/{user_address}
type UserPoliciesResponse struct {
	UserAddress string           `json:"user_address"`
	Policies    []PolicyResponse `json:"policies"`
}

func toPolicyResponse(p *policy.Policy) PolicyResponse {
	return PolicyResponse{
		PolicyID:        p.PolicyID,
		CoverageAmount:  p.Coverage.ToFloat64(),
		Premium:         p.Premium.ToFloat64(),
		Status:          p.Status.String(),
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		ContractAddress: p.ContractAddress,
	}
}

func toClaimResponse(c *claim.Claim, ledgerPolicyID string) ClaimResponse {
	return ClaimResponse{
		ClaimID:      c.ClaimID,
		PolicyID:     ledgerPolicyID,
		Amount:       c.Amount.ToFloat64(),
		Status:       c.Status.String(),
		EvidenceHash: c.EvidenceHash.String(),
		CreatedAt:    c.CreatedAt,
		ProcessedAt:  c.ProcessedAt,
	}
}
