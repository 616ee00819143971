package values

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/coverledger/coverledger-backend/internal/domain/errors"
)

// WalletAddress identifies an applicant's ledger account. Canonical form is
// 0x followed by 40 lowercase hex characters.
type WalletAddress struct {
	address string
}

var walletAddressRegex = regexp.MustCompile(`^0x[a-f0-9]{40}$`)

// NewWalletAddress creates a new WalletAddress value object with validation
func NewWalletAddress(address string) (WalletAddress, error) {
	if address == "" {
		return WalletAddress{}, errors.NewValidationError("EMPTY_WALLET_ADDRESS",
			"wallet address cannot be empty")
	}

	normalized := strings.ToLower(strings.TrimSpace(address))
	if !strings.HasPrefix(normalized, "0x") {
		normalized = "0x" + normalized
	}

	if !walletAddressRegex.MatchString(normalized) {
		return WalletAddress{}, errors.NewValidationError("INVALID_WALLET_ADDRESS",
			fmt.Sprintf("invalid wallet address format: %s", address))
	}

	return WalletAddress{address: normalized}, nil
}

// MustNewWalletAddress creates a WalletAddress and panics on error (for tests)
func MustNewWalletAddress(address string) WalletAddress {
	a, err := NewWalletAddress(address)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the canonical 0x-prefixed lowercase form
func (a WalletAddress) String() string {
	return a.address
}

// IsZero reports whether the address is unset
func (a WalletAddress) IsZero() bool {
	return a.address == ""
}

// Equal checks two addresses for equality
func (a WalletAddress) Equal(other WalletAddress) bool {
	return a.address == other.address
}

// JSON marshaling
func (a WalletAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.address)
}

func (a *WalletAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := NewWalletAddress(s)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// Scan implements sql.Scanner
func (a *WalletAddress) Scan(value interface{}) error {
	if value == nil {
		*a = WalletAddress{}
		return nil
	}

	switch v := value.(type) {
	case string:
		parsed, err := NewWalletAddress(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		return a.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into WalletAddress", value)
	}
}

// Value implements driver.Valuer
func (a WalletAddress) Value() (driver.Value, error) {
	return a.address, nil
}
