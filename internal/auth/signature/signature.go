// Package signature recovers the signing wallet address from an EIP-191
// personal-sign message, the scheme browser wallets use for login
// challenges.
package signature

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"sigil/pkg/domain"
)

// Recoverer resolves a signed message to the address that signed it.
// Implementations fail on malformed signatures; address comparison is the
// caller's responsibility.
type Recoverer interface {
	Recover(message string, signature string) (domain.Address, error)
}

// EthereumRecoverer implements Recoverer with secp256k1 public-key
// recovery over the personal-sign digest of the message.
type EthereumRecoverer struct{}

// NewEthereumRecoverer constructs the production recoverer.
func NewEthereumRecoverer() EthereumRecoverer {
	return EthereumRecoverer{}
}

// Recover decodes a 65-byte hex signature and recovers the signer of the
// personal-sign digest of message.
func (EthereumRecoverer) Recover(message string, signature string) (domain.Address, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(raw))
	}

	// Wallets emit V as 27/28; go-ethereum expects 0/1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}

	return domain.ParseAddress(crypto.PubkeyToAddress(*pub).Hex())
}
