package values

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/coverledger/coverledger-backend/internal/domain/errors"
)

// EvidenceHash is the content address of off-system claim evidence. It is a
// hex-encoded SHA-256 digest, accepted with or without a 0x prefix and stored
// lowercase without the prefix.
type EvidenceHash struct {
	hash string
}

var sha256HexRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// NewEvidenceHash creates a new EvidenceHash value object with validation
func NewEvidenceHash(hash string) (EvidenceHash, error) {
	if hash == "" {
		return EvidenceHash{}, errors.NewValidationError("EMPTY_EVIDENCE_HASH",
			"evidence hash cannot be empty")
	}

	normalized := strings.ToLower(strings.TrimSpace(hash))
	normalized = strings.TrimPrefix(normalized, "0x")

	if !sha256HexRegex.MatchString(normalized) {
		return EvidenceHash{}, errors.NewValidationError("INVALID_EVIDENCE_HASH",
			"evidence hash must be a 64-character hexadecimal string (SHA-256)")
	}

	return EvidenceHash{hash: normalized}, nil
}

// ComputeEvidenceHash computes the content address for raw evidence bytes
func ComputeEvidenceHash(data []byte) (EvidenceHash, error) {
	if len(data) == 0 {
		return EvidenceHash{}, errors.NewValidationError("EMPTY_EVIDENCE",
			"evidence data cannot be empty")
	}

	sum := sha256.Sum256(data)
	return EvidenceHash{hash: hex.EncodeToString(sum[:])}, nil
}

// MustNewEvidenceHash creates an EvidenceHash and panics on error (for tests)
func MustNewEvidenceHash(hash string) EvidenceHash {
	h, err := NewEvidenceHash(hash)
	if err != nil {
		panic(err)
	}
	return h
}

// String returns the canonical lowercase hex form
func (h EvidenceHash) String() string {
	return h.hash
}

// IsZero reports whether the hash is unset
func (h EvidenceHash) IsZero() bool {
	return h.hash == ""
}

// Equal checks two hashes for equality
func (h EvidenceHash) Equal(other EvidenceHash) bool {
	return h.hash == other.hash
}

// JSON marshaling
func (h EvidenceHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.hash)
}

func (h *EvidenceHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := NewEvidenceHash(s)
	if err != nil {
		return err
	}

	*h = parsed
	return nil
}

// Scan implements sql.Scanner
func (h *EvidenceHash) Scan(value interface{}) error {
	if value == nil {
		*h = EvidenceHash{}
		return nil
	}

	switch v := value.(type) {
	case string:
		parsed, err := NewEvidenceHash(v)
		if err != nil {
			return err
		}
		*h = parsed
		return nil
	case []byte:
		return h.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into EvidenceHash", value)
	}
}

// Value implements driver.Valuer
func (h EvidenceHash) Value() (driver.Value, error) {
	return h.hash, nil
}
