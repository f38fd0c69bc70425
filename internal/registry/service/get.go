package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"sigil/internal/registry/models"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/platform/sentinel"
)

// Get returns a document's metadata. The access check runs before any
// lookup so unknown ids are indistinguishable from forbidden ones.
func (s *Service) Get(ctx context.Context, caller domain.Address, id domain.DocumentID) (*models.Document, error) {
	ctx, span := tracer.Start(ctx, "registry.get")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", id.String()))

	if err := s.access.Authorize(ctx, id, caller); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// GetContent returns a document together with its body from the content
// store. A missing body for an anchored document is an infrastructure
// fault, not a lookup miss.
func (s *Service) GetContent(ctx context.Context, caller domain.Address, id domain.DocumentID) (*models.Document, []byte, error) {
	ctx, span := tracer.Start(ctx, "registry.get_content")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", id.String()))

	if err := s.access.Authorize(ctx, id, caller); err != nil {
		return nil, nil, err
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.content.Fetch(ctx, doc.ContentHash)
	if err != nil {
		s.logger.WarnContext(ctx, "content fetch failed",
			"document_id", id.String(),
			"content_hash", doc.ContentHash,
			"error", err,
		)
		return nil, nil, ErrContentUnavailable
	}
	return doc, data, nil
}

func (s *Service) find(ctx context.Context, id domain.DocumentID) (*models.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return doc, nil
}
