package applicant

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// Applicant is an insurance applicant keyed by their ledger wallet address.
// Created lazily on the first application; profile fields may be updated,
// the wallet address never is.
type Applicant struct {
	ID            uuid.UUID            `json:"id"`
	WalletAddress values.WalletAddress `json:"wallet_address"`

	Age         int     `json:"age"`
	CreditScore int     `json:"credit_score"`
	Occupation  string  `json:"occupation,omitempty"`
	Income      float64 `json:"income,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewApplicant creates a new applicant profile
func NewApplicant(wallet values.WalletAddress, age, creditScore int, occupation string) (*Applicant, error) {
	if wallet.IsZero() {
		return nil, ErrMissingWallet
	}
	if age < 0 || age > 150 {
		return nil, fmt.Errorf("invalid age: %d", age)
	}
	if creditScore < 0 {
		return nil, fmt.Errorf("invalid credit score: %d", creditScore)
	}

	return &Applicant{
		ID:            uuid.New(),
		WalletAddress: wallet,
		Age:           age,
		CreditScore:   creditScore,
		Occupation:    occupation,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

var ErrMissingWallet = fmt.Errorf("wallet address is required")
