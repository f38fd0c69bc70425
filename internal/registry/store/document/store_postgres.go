package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sigil/internal/platform/postgres"
	"sigil/internal/registry/models"
	"sigil/pkg/domain"
	"sigil/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresDocumentStore persists documents in Postgres. Records are
// immutable after registration, so plain inserts and selects suffice.
type PostgresDocumentStore struct {
	pool *postgres.Pool
}

func NewPostgres(pool *postgres.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{pool: pool}
}

func (s *PostgresDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, title, doc_type, content_hash, issuer, recipient,
		                       status, ledger_tx, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(doc.ID), doc.Title, doc.DocType.String(), doc.ContentHash,
		doc.Issuer, doc.Recipient, doc.Status, doc.LedgerTx,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("document %s already registered: %w", doc.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) FindByID(ctx context.Context, id domain.DocumentID) (*models.Document, error) {
	doc := &models.Document{}
	var rawID uuid.UUID
	var docType string
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, doc_type, content_hash, issuer, recipient,
		       status, ledger_tx, created_at, updated_at
		FROM documents WHERE id = $1`, uuid.UUID(id)).Scan(
		&rawID, &doc.Title, &docType, &doc.ContentHash,
		&doc.Issuer, &doc.Recipient, &doc.Status, &doc.LedgerTx,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	doc.ID = domain.DocumentID(rawID)
	doc.DocType = domain.DocType(docType)
	return doc, nil
}
