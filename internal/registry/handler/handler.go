// Package handler exposes the document registry over HTTP. Every route
// here sits behind the auth middleware; whether the caller may read a
// given document is the ledger's decision, not a local rule.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sigil/internal/registry/models"
	"sigil/internal/registry/service"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/httputil"
	"sigil/pkg/requestcontext"
)

// Service is the slice of the registry core the HTTP layer drives.
type Service interface {
	Register(ctx context.Context, caller domain.Address, req service.RegisterDocumentRequest) (*models.Document, error)
	Get(ctx context.Context, caller domain.Address, id domain.DocumentID) (*models.Document, error)
	GetContent(ctx context.Context, caller domain.Address, id domain.DocumentID) (*models.Document, []byte, error)
}

// Handler wires the document endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterProtected mounts the document endpoints. The caller places
// these behind the auth middleware; there are no public registry routes.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.HandleRegister)
		r.Get("/{documentID}", h.HandleGet)
		r.Get("/{documentID}/content", h.HandleGetContent)
	})
}

// HandleRegister handles POST /documents requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterDocumentRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	doc, err := h.service.Register(ctx, caller, service.RegisterDocumentRequest{
		Title:     req.Title,
		DocType:   req.DocType,
		Recipient: req.Recipient,
		Content:   req.DocumentBytes(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "document registration failed",
			"request_id", requestID,
			"issuer", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document registered",
		"request_id", requestID,
		"document_id", doc.ID.String(),
		"issuer", caller.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromDocument(doc))
}

// HandleGet handles GET /documents/{documentID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Get(ctx, caller, id)
	if err != nil {
		h.logger.WarnContext(ctx, "document lookup failed",
			"request_id", requestID,
			"document_id", id.String(),
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDocument(doc))
}

// HandleGetContent handles GET /documents/{documentID}/content requests.
func (h *Handler) HandleGetContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, data, err := h.service.GetContent(ctx, caller, id)
	if err != nil {
		h.logger.WarnContext(ctx, "document content fetch failed",
			"request_id", requestID,
			"document_id", id.String(),
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromContent(doc, data))
}
