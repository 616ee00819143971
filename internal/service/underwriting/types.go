package underwriting

import (
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/risk"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// ApplicationRequest carries everything needed to underwrite a new policy
type ApplicationRequest struct {
	Wallet       values.WalletAddress
	Age          int
	CreditScore  int
	Occupation   string
	Income       float64
	ClaimHistory int
	RiskFactors  float64
	HealthScore  float64

	Coverage     values.Money
	DurationDays int
}

// ApplicationResult is the outcome of a successful application
type ApplicationResult struct {
	Policy     *policy.Policy
	Assessment *risk.Assessment
	Premium    values.Money
}

// RiskRequest scores a profile without creating a policy. Coverage is
// included because it is a model feature.
type RiskRequest struct {
	Wallet       values.WalletAddress
	Age          int
	CreditScore  int
	Occupation   string
	Income       float64
	ClaimHistory int
	RiskFactors  float64
	HealthScore  float64
	Coverage     values.Money
}

// RiskResult is a standalone risk quote
type RiskResult struct {
	Score        float64
	Factors      []string
	ModelVersion string
	Cached       bool
}

// features maps request fields onto the model feature vector
func (r *ApplicationRequest) features() risk.Features {
	return buildFeatures(r.Age, r.ClaimHistory, r.CreditScore, r.Occupation,
		r.Income, r.RiskFactors, r.HealthScore, r.Coverage)
}

func (r *RiskRequest) features() risk.Features {
	return buildFeatures(r.Age, r.ClaimHistory, r.CreditScore, r.Occupation,
		r.Income, r.RiskFactors, r.HealthScore, r.Coverage)
}

// occupationRiskWeights maps occupations to a risk weight in [0,1].
// Unlisted occupations get the default weight.
var occupationRiskWeights = map[string]float64{
	"miner":        0.9,
	"pilot":        0.8,
	"construction": 0.7,
	"driver":       0.6,
	"farmer":       0.5,
	"nurse":        0.4,
	"teacher":      0.2,
	"engineer":     0.2,
	"accountant":   0.1,
}

const defaultOccupationRisk = 0.3

func buildFeatures(age, claimHistory, creditScore int, occupation string, income, riskFactor, healthScore float64, coverage values.Money) risk.Features {
	occupationRisk, ok := occupationRiskWeights[occupation]
	if !ok {
		occupationRisk = defaultOccupationRisk
	}

	return risk.Features{
		Age:            float64(age),
		ClaimHistory:   float64(claimHistory),
		RiskFactor:     riskFactor,
		CoverageAmount: coverage.ToFloat64(),
		Income:         income,
		CreditScore:    float64(creditScore),
		OccupationRisk: occupationRisk,
		HealthScore:    healthScore,
	}
}
