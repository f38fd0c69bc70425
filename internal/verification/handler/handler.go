// Package handler exposes the proof flows over HTTP. The email proof
// rides the caller's session; the document proof endpoints are public
// because their secret travels out of band, through the owner's inbox.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authhandler "sigil/internal/auth/handler"
	authmodels "sigil/internal/auth/models"
	"sigil/internal/verification"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/httputil"
	"sigil/pkg/requestcontext"
)

// Service is the slice of the verification core the HTTP layer drives.
type Service interface {
	StartEmailProof(ctx context.Context, address domain.Address) (*verification.EmailProofStarted, error)
	ConfirmEmailProof(ctx context.Context, address domain.Address, code string) (*authmodels.Account, error)
	StartDocumentProof(ctx context.Context, id domain.DocumentID) (*verification.DocumentProofStarted, error)
	ConfirmDocumentProof(ctx context.Context, id domain.DocumentID, code string) (*verification.Disclosure, error)
}

// Handler wires the proof endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the public document-proof endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Route("/verify/documents/{documentID}", func(r chi.Router) {
		r.Post("/", h.HandleStartDocumentProof)
		r.Post("/confirm", h.HandleConfirmDocumentProof)
	})
}

// RegisterProtected mounts the email-proof endpoints behind the auth
// middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Route("/verification/email", func(r chi.Router) {
		r.Post("/", h.HandleStartEmailProof)
		r.Post("/confirm", h.HandleConfirmEmailProof)
	})
}

// HandleStartEmailProof handles POST /verification/email requests.
func (h *Handler) HandleStartEmailProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	res, err := h.service.StartEmailProof(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "email proof refused",
			"request_id", requestID,
			"address", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, ProofStartedResponse{Delivery: res.Delivery})
}

// HandleConfirmEmailProof handles POST /verification/email/confirm
// requests.
func (h *Handler) HandleConfirmEmailProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[ConfirmRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	account, err := h.service.ConfirmEmailProof(ctx, caller, req.Code)
	if err != nil {
		h.logger.WarnContext(ctx, "email proof confirmation failed",
			"request_id", requestID,
			"address", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "email verified",
		"request_id", requestID,
		"address", caller.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, authhandler.FromAccount(account))
}

// HandleStartDocumentProof handles POST /verify/documents/{documentID}
// requests.
func (h *Handler) HandleStartDocumentProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.StartDocumentProof(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "document proof refused",
			"request_id", requestID,
			"document_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, ProofStartedResponse{
		Delivery:    res.Delivery,
		MaskedEmail: res.MaskedEmail,
	})
}

// HandleConfirmDocumentProof handles
// POST /verify/documents/{documentID}/confirm requests.
func (h *Handler) HandleConfirmDocumentProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ConfirmRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	disclosure, err := h.service.ConfirmDocumentProof(ctx, id, req.Code)
	if err != nil {
		h.logger.WarnContext(ctx, "document proof confirmation failed",
			"request_id", requestID,
			"document_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document proof confirmed",
		"request_id", requestID,
		"document_id", id.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDisclosure(disclosure))
}
