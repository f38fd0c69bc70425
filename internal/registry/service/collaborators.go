package service

import (
	"context"

	"sigil/pkg/domain"
)

// Ledger is the slice of the registry-contract client the service uses.
// Anchoring failures must leave no locally persisted document.
type Ledger interface {
	AnchorDocument(ctx context.Context, documentID, contentHash string, issuer, recipient domain.Address) (string, error)
}

// ContentStore stores and serves document bodies by keccak256 digest.
type ContentStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Fetch(ctx context.Context, hash string) ([]byte, error)
}
