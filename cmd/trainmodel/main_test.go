package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `age,claim_history,risk_factors,coverage_amount,income,credit_score,occupation_risk,health_score,high_risk
28,0,0,7000,65000,750,0.2,0.9,0
67,4,1,20000,30000,580,0.7,0.4,1
`

func TestParseSamples(t *testing.T) {
	samples, err := parseSamples(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.False(t, samples[0].HighRisk)
	assert.Equal(t, 28.0, samples[0].Features.Age)
	assert.Equal(t, 750.0, samples[0].Features.CreditScore)

	assert.True(t, samples[1].HighRisk)
	assert.Equal(t, 4.0, samples[1].Features.ClaimHistory)
}

func TestParseSamples_Rejects(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			"wrong header",
			"age,claims\n28,0\n",
		},
		{
			"non numeric field",
			"age,claim_history,risk_factors,coverage_amount,income,credit_score,occupation_risk,health_score,high_risk\nabc,0,0,7000,65000,750,0.2,0.9,0\n",
		},
		{
			"label out of range",
			"age,claim_history,risk_factors,coverage_amount,income,credit_score,occupation_risk,health_score,high_risk\n28,0,0,7000,65000,750,0.2,0.9,2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSamples(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}
