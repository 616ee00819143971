package underwriting

import (
	"github.com/shopspring/decimal"

	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// baseRate is the flat premium rate applied to coverage before risk loading
var baseRate = decimal.NewFromFloat(0.01)

// CalculatePremium prices a policy as coverage * base rate * (1 + risk score).
// A zero-risk applicant pays exactly the base rate; the premium grows linearly
// with the scored probability, doubling at the maximum score of 1.
func CalculatePremium(coverage values.Money, riskScore float64) values.Money {
	loading := decimal.NewFromFloat(1 + riskScore)
	return coverage.Mul(baseRate.Mul(loading)).Round(2)
}
