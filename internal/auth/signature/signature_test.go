package signature

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/pkg/domain"
)

// personalSign mimics what a browser wallet does: sign the EIP-191 digest
// and report V as 27/28.
func personalSign(t *testing.T, message string, key *ecdsa.PrivateKey) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

func newWallet(t *testing.T) (*ecdsa.PrivateKey, domain.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr, err := domain.ParseAddress(crypto.PubkeyToAddress(key.PublicKey).Hex())
	require.NoError(t, err)
	return key, addr
}

func TestRecover_MatchesSigner(t *testing.T) {
	key, wallet := newWallet(t)
	message := wallet.String() + ":1748779200:deadbeefdeadbeefdeadbeefdeadbeef"

	recovered, err := NewEthereumRecoverer().Recover(message, personalSign(t, message, key))
	require.NoError(t, err)
	assert.True(t, recovered.Equal(wallet))
}

func TestRecover_VNotAdjusted(t *testing.T) {
	// Some wallets already emit V as 0/1; recovery must accept both forms.
	key, wallet := newWallet(t)
	message := "login challenge"

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	recovered, err := NewEthereumRecoverer().Recover(message, hexutil.Encode(sig))
	require.NoError(t, err)
	assert.True(t, recovered.Equal(wallet))
}

func TestRecover_DifferentMessageDifferentSigner(t *testing.T) {
	key, wallet := newWallet(t)
	signed := personalSign(t, "the real challenge", key)

	recovered, err := NewEthereumRecoverer().Recover("a forged challenge", signed)
	if err != nil {
		// Recovery over a different digest may fail outright; that also
		// counts as a rejection.
		return
	}
	assert.False(t, recovered.Equal(wallet), "signature must not transfer to another message")
}

func TestRecover_MalformedSignature(t *testing.T) {
	r := NewEthereumRecoverer()

	cases := map[string]string{
		"not hex":      "hello world",
		"missing 0x":   "deadbeef",
		"too short":    "0xdeadbeef",
		"too long":     "0x" + hexOfLen(67),
		"empty string": "",
	}

	for name, sig := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Recover("message", sig)
			assert.Error(t, err)
		})
	}
}

func hexOfLen(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = 0xab
	}
	return hexutil.Encode(buf)[2:]
}
