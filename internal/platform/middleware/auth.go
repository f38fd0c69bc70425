package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/httputil"
	"sigil/pkg/requestcontext"
)

// AccessValidator resolves a bearer access token to the wallet address it
// asserts. Implementations check token signature, expiry, kind, and that
// the address still resolves to a usable account.
type AccessValidator interface {
	Authenticate(ctx context.Context, token string) (domain.Address, error)
}

// CallerAddress retrieves the authenticated wallet address set by
// RequireAuth. Zero value means unauthenticated.
func CallerAddress(ctx context.Context) domain.Address {
	return requestcontext.Caller(ctx)
}

// RequireAuth gates a route subtree behind access-token authentication.
// On success only the wallet address is exposed to downstream handlers.
func RequireAuth(validator AccessValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			addr, err := validator.Authenticate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - token rejected",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, addr)))
		})
	}
}
