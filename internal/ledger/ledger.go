// Package ledger talks to the document registry contract. Documents are
// anchored on chain by id and content hash, and the contract answers
// capability queries (may this wallet open this document). The chain is a
// collaborator here, not a database: every failure surfaces as
// sentinel.ErrUnavailable so callers can distinguish "the ledger said no"
// from "the ledger could not be asked".
package ledger

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"sigil/pkg/domain"
)

// registryABI is the interface of the on-chain document registry. The
// contract itself is deployed out of band; only its call surface lives here.
const registryABI = `[
  {
    "name": "anchorDocument",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "id", "type": "bytes32"},
      {"name": "contentHash", "type": "bytes32"},
      {"name": "issuer", "type": "address"},
      {"name": "recipient", "type": "address"}
    ],
    "outputs": []
  },
  {
    "name": "canAccess",
    "type": "function",
    "stateMutability": "view",
    "inputs": [
      {"name": "id", "type": "bytes32"},
      {"name": "caller", "type": "address"}
    ],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "name": "getDocument",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "id", "type": "bytes32"}],
    "outputs": [
      {"name": "contentHash", "type": "bytes32"},
      {"name": "issuer", "type": "address"},
      {"name": "recipient", "type": "address"},
      {"name": "anchoredAt", "type": "uint256"}
    ]
  }
]`

// Entry is a document's on-chain record.
type Entry struct {
	ContentHash string
	Issuer      domain.Address
	Recipient   domain.Address
	AnchoredAt  time.Time
}

// documentKey maps a document id to its bytes32 contract key. Ids are
// opaque strings (uuids in practice), so the key is their keccak256 digest.
func documentKey(documentID string) common.Hash {
	return crypto.Keccak256Hash([]byte(documentID))
}

func toAddress(a common.Address) domain.Address {
	return domain.Address(strings.ToLower(a.Hex()))
}
