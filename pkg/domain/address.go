package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "sigil/pkg/domain-errors"
)

// Address is a wallet address in canonical form: lowercase, 0x-prefixed,
// 40 hex characters. Accounts are keyed by this form, so normalization
// happens exactly once, at the trust boundary.
type Address string

// ParseAddress validates a wallet address and returns its canonical form.
// Mixed-case (EIP-55) input is accepted and lowered; anything that is not
// a well-formed 20-byte hex address is rejected.
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	if !common.IsHexAddress(trimmed) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "not a well-formed wallet address")
	}
	return Address(strings.ToLower(common.HexToAddress(trimmed).Hex())), nil
}

func (a Address) String() string { return string(a) }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == "" }

// Common converts to the go-ethereum address type for signature and
// ledger operations.
func (a Address) Common() common.Address {
	return common.HexToAddress(string(a))
}

// Equal compares case-insensitively, tolerating non-canonical input on
// either side.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(string(a), string(other))
}
