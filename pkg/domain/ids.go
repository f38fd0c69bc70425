package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "sigil/pkg/domain-errors"
)

// Typed identifiers for domain entities. Wrapping uuid.UUID in distinct
// types makes cross-entity ID mixups a compile error instead of a data
// corruption bug.

// DocumentID identifies a registered document.
type DocumentID uuid.UUID

// EventID identifies an audit event.
type EventID uuid.UUID

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New())
}

// NewEventID returns a fresh random EventID.
func NewEventID() EventID {
	return EventID(uuid.New())
}

// ParseDocumentID validates and parses a document ID from its string form.
// Empty strings, malformed UUIDs and the nil UUID are all rejected: IDs
// arriving at a trust boundary must be valid, non-empty and non-nil.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document id")
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(u), nil
}

// ParseEventID validates and parses an audit event ID from its string form.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	if err != nil {
		return EventID{}, err
	}
	return EventID(u), nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s cannot be empty", what))
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s", what))
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s cannot be the nil UUID", what))
	}
	return u, nil
}

func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string    { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the zero value.
func (id DocumentID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
