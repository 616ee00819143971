package risk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Named risk-factor flags raised by the deterministic rule layer. The rule
// layer is independent of the statistical model and is always evaluated.
const (
	FlagAgeRisk          = "Age Risk"
	FlagHighClaimHistory = "High Claim History"
	FlagLowCreditScore   = "Low Credit Score"
)

// Rule thresholds
const (
	ageRiskThreshold      = 60
	claimHistoryThreshold = 2
	creditScoreThreshold  = 650
)

// Features is the applicant feature vector fed to the risk model. Missing
// fields default to zero, matching the training pipeline.
type Features struct {
	Age            float64 `json:"age"`
	ClaimHistory   float64 `json:"claim_history"`
	RiskFactor     float64 `json:"risk_factors"`
	CoverageAmount float64 `json:"coverage_amount"`
	Income         float64 `json:"income"`
	CreditScore    float64 `json:"credit_score"`
	OccupationRisk float64 `json:"occupation_risk"`
	HealthScore    float64 `json:"health_score"`
}

// Vector returns the features in canonical training order.
func (f Features) Vector() []float64 {
	return []float64{
		f.Age,
		f.ClaimHistory,
		f.RiskFactor,
		f.CoverageAmount,
		f.Income,
		f.CreditScore,
		f.OccupationRisk,
		f.HealthScore,
	}
}

// FeatureCount is the dimensionality of the model input.
const FeatureCount = 8

// Flags evaluates the deterministic rule layer for the feature vector.
func (f Features) Flags() []string {
	var flags []string

	if f.Age > ageRiskThreshold {
		flags = append(flags, FlagAgeRisk)
	}
	if f.ClaimHistory > claimHistoryThreshold {
		flags = append(flags, FlagHighClaimHistory)
	}
	if f.CreditScore < creditScoreThreshold {
		flags = append(flags, FlagLowCreditScore)
	}

	return flags
}

// Assessment is one scored evaluation of an applicant. Assessments are
// append-only; every application produces a new row.
type Assessment struct {
	ID           uuid.UUID `json:"id"`
	ApplicantID  uuid.UUID `json:"applicant_id"`
	Score        float64   `json:"risk_score"` // P(high-risk) in [0,1]
	Factors      []string  `json:"risk_factors"`
	ModelVersion string    `json:"model_version"`
	AssessedAt   time.Time `json:"assessed_at"`
}

// NewAssessment records a model score plus rule flags for an applicant.
func NewAssessment(applicantID uuid.UUID, score float64, factors []string, modelVersion string) (*Assessment, error) {
	if applicantID == uuid.Nil {
		return nil, fmt.Errorf("applicant id is required")
	}
	if score < 0 || score > 1 {
		return nil, fmt.Errorf("risk score %v outside [0,1]", score)
	}

	if factors == nil {
		factors = []string{}
	}

	return &Assessment{
		ID:           uuid.New(),
		ApplicantID:  applicantID,
		Score:        score,
		Factors:      factors,
		ModelVersion: modelVersion,
		AssessedAt:   time.Now().UTC(),
	}, nil
}
