package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sigil/pkg/requestcontext"
)

// RequestID assigns each request an ID (honoring an inbound X-Request-ID),
// exposes it on the response, and pins the request-scoped clock so every
// expiry decision in one request sees the same instant.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID assigned by RequestID.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
