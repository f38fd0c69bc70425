package testutil

import (
	"net/http"

	"sigil/pkg/domain"
	"sigil/pkg/requestcontext"
)

// WithCaller marks the request as authenticated for the given wallet
// address. This simulates what the auth middleware would do after
// validating an access token. Invalid addresses are silently ignored.
func WithCaller(req *http.Request, address string) *http.Request {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), addr))
}

// WithBearer sets the Authorization header for an access-token request.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
