package applicant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

func TestNewApplicant(t *testing.T) {
	wallet := values.MustNewWalletAddress("0x1111111111111111111111111111111111111111")

	a, err := NewApplicant(wallet, 35, 720, "engineer")
	require.NoError(t, err)
	assert.NotEqual(t, "", a.ID.String())
	assert.Equal(t, wallet, a.WalletAddress)
	assert.Equal(t, 35, a.Age)
	assert.Equal(t, 720, a.CreditScore)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestNewApplicant_Rejects(t *testing.T) {
	wallet := values.MustNewWalletAddress("0x1111111111111111111111111111111111111111")

	_, err := NewApplicant(values.WalletAddress{}, 35, 720, "")
	assert.ErrorIs(t, err, ErrMissingWallet)

	_, err = NewApplicant(wallet, -1, 720, "")
	assert.Error(t, err)

	_, err = NewApplicant(wallet, 200, 720, "")
	assert.Error(t, err)

	_, err = NewApplicant(wallet, 35, -5, "")
	assert.Error(t, err)
}
