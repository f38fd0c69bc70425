package verification

import (
	"context"

	"sigil/internal/email"
)

// EmailSender delivers the one-time codes. A refused recipient comes
// back in the Outcome; transport trouble as an error.
type EmailSender interface {
	Send(ctx context.Context, msg email.Message) (email.Outcome, error)
}

// ContentFetcher retrieves the owner photo disclosed after a successful
// document proof.
type ContentFetcher interface {
	Fetch(ctx context.Context, hash string) ([]byte, error)
}
