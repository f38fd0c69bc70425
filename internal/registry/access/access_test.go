package access

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/audit"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

type stubGate struct {
	allowed bool
	err     error
	asked   int
}

func (g *stubGate) CanAccessDocument(context.Context, string, domain.Address) (bool, error) {
	g.asked++
	return g.allowed, g.err
}

func newAuthorizer(gate *stubGate, sink *audit.MemorySink) *Authorizer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []Option{WithLogger(logger)}
	if sink != nil {
		opts = append(opts, WithAuditPublisher(audit.NewPublisher(sink)))
	}
	return New(gate, opts...)
}

func TestAuthorizeGrants(t *testing.T) {
	gate := &stubGate{allowed: true}
	a := newAuthorizer(gate, nil)

	err := a.Authorize(context.Background(), domain.NewDocumentID(),
		domain.Address("0x1111111111111111111111111111111111111111"))
	require.NoError(t, err)
	assert.Equal(t, 1, gate.asked)
}

func TestAuthorizeDenialIsForbiddenAndAudited(t *testing.T) {
	gate := &stubGate{allowed: false}
	sink := audit.NewMemorySink(16)
	a := newAuthorizer(gate, sink)

	id := domain.NewDocumentID()
	caller := domain.Address("0x1111111111111111111111111111111111111111")

	err := a.Authorize(context.Background(), id, caller)
	require.ErrorIs(t, err, ErrAccessDenied)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	events, err := sink.ListBySubject(context.Background(), id.String())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.KindAccessDenied, events[0].Kind)
	assert.Equal(t, caller.String(), events[0].Actor)
}

func TestAuthorizeLedgerFailureIsUnavailable(t *testing.T) {
	gate := &stubGate{err: errors.New("rpc down")}
	sink := audit.NewMemorySink(16)
	a := newAuthorizer(gate, sink)

	err := a.Authorize(context.Background(), domain.NewDocumentID(),
		domain.Address("0x1111111111111111111111111111111111111111"))
	require.ErrorIs(t, err, ErrAccessCheckFailed)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	// An outage is not a denial: nothing is audited against the document.
	events, listErr := sink.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, events)
}

func TestAuthorizeValidatesInputs(t *testing.T) {
	gate := &stubGate{allowed: true}
	a := newAuthorizer(gate, nil)

	err := a.Authorize(context.Background(), domain.DocumentID{},
		domain.Address("0x1111111111111111111111111111111111111111"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	err = a.Authorize(context.Background(), domain.NewDocumentID(), domain.Address(""))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	assert.Zero(t, gate.asked)
}
