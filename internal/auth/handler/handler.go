// Package handler exposes the wallet-challenge authentication flows over
// HTTP. Request bodies validate themselves before the service is touched;
// login failures leave the wire as one generic envelope.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sigil/internal/auth/models"
	"sigil/internal/auth/service"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/httputil"
	"sigil/pkg/requestcontext"
)

// Service is the slice of the authentication core the HTTP layer drives.
type Service interface {
	Register(ctx context.Context, req service.RegisterRequest) (*models.Account, error)
	Challenge(ctx context.Context, rawAddress string) (*models.ChallengeResult, error)
	Login(ctx context.Context, req service.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	History(ctx context.Context, address domain.Address) (*models.HistoryResult, error)
}

// Handler wires account and auth endpoints to the authentication service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the unauthenticated account and auth endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/accounts", h.HandleRegister)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/challenge", h.HandleChallenge)
		r.Post("/login", h.HandleLogin)
		r.Post("/refresh", h.HandleRefresh)
		r.Post("/logout", h.HandleLogout)
	})
}

// RegisterProtected mounts the endpoints that require a bearer access
// token. The caller places these behind the auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/auth/history", h.HandleHistory)
}

// HandleRegister handles POST /accounts requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterAccountRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	account, err := h.service.Register(ctx, service.RegisterRequest{
		Address:   req.Address,
		Email:     req.Email,
		Roles:     req.Roles,
		PhotoHash: req.PhotoHash,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "account registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "account registered",
		"request_id", requestID,
		"address", account.Address.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromAccount(account))
}

// HandleChallenge handles POST /auth/challenge requests.
func (h *Handler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ChallengeRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	result, err := h.service.Challenge(ctx, req.Address)
	if err != nil {
		h.logger.WarnContext(ctx, "challenge refused",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromChallenge(result))
}

// HandleLogin handles POST /auth/login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	pair, err := h.service.Login(ctx, service.LoginRequest{
		Address:   req.Address,
		Signature: req.Signature,
		Nonce:     req.Nonce,
		SourceIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, loginFailure(err))
		return
	}

	h.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestID,
		"address", req.Address,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromTokenPair(pair))
}

// loginFailure flattens every unauthorized-class login error into one
// generic envelope so callers cannot probe which check failed. Lockout
// keeps its distinct 429 and malformed input its 400.
func loginFailure(err error) error {
	if dErrors.CodeOf(err) == dErrors.CodeUnauthorized {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication failed")
	}
	return err
}

// HandleRefresh handles POST /auth/refresh requests.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RefreshRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	pair, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "token refresh refused",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromTokenPair(pair))
}

// HandleLogout handles POST /auth/logout requests.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LogoutRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	if err := h.service.Logout(ctx, req.RefreshToken); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// HandleHistory handles GET /auth/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	history, err := h.service.History(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "history lookup failed",
			"request_id", requestID,
			"address", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromHistory(history))
}
