// Package email delivers one-time codes and notices to account holders.
package email

import (
	"context"
)

// Message is one outbound mail. Text is the canonical body; HTML, when
// set, rides along as the alternative part.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Outcome reports what the transport did with a message. Neither flag
// set means the transport itself failed before a verdict.
type Outcome struct {
	Accepted bool
	Rejected bool
}

// Sender delivers messages. Implementations respect ctx deadlines; a
// refused recipient surfaces as Rejected, relay trouble as an error.
type Sender interface {
	Send(ctx context.Context, msg Message) (Outcome, error)
}
