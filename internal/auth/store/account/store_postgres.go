package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sigil/internal/auth/models"
	"sigil/internal/platform/postgres"
	"sigil/pkg/domain"
	"sigil/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresAccountStore persists accounts in Postgres. Auth-state updates
// are single conditional statements, so the compare-and-clear and the
// failure counter hold under concurrent requests without advisory locks.
type PostgresAccountStore struct {
	pool *postgres.Pool
}

func NewPostgres(pool *postgres.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

func (s *PostgresAccountStore) Create(ctx context.Context, account *models.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (address, email, email_verified, roles, photo_hash, status,
		                      failed_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.Address, account.Email, account.EmailVerified, rolesToText(account.Roles),
		account.PhotoHash, account.Status, account.Auth.FailedAttempts,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("account %s already registered: %w", account.Address, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresAccountStore) FindByAddress(ctx context.Context, address domain.Address) (*models.Account, error) {
	account := &models.Account{}
	var roles []string
	err := s.pool.QueryRow(ctx, `
		SELECT address, email, email_verified, roles, photo_hash, status,
		       nonce, nonce_issued_at, failed_attempts, locked_until,
		       last_login, created_at, updated_at
		FROM accounts WHERE address = $1`, address).Scan(
		&account.Address, &account.Email, &account.EmailVerified, &roles,
		&account.PhotoHash, &account.Status,
		&account.Auth.Nonce, &account.Auth.NonceIssuedAt, &account.Auth.FailedAttempts,
		&account.Auth.LockedUntil, &account.Security.LastLogin,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select account: %w", err)
	}
	account.Roles = domain.ParseRoles(roles)

	history, err := s.loginHistory(ctx, address)
	if err != nil {
		return nil, err
	}
	account.Security.LoginHistory = history
	return account, nil
}

func (s *PostgresAccountStore) loginHistory(ctx context.Context, address domain.Address) ([]models.LoginEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT at, source_ip, device FROM login_history
		WHERE address = $1 ORDER BY at ASC, id ASC`, address)
	if err != nil {
		return nil, fmt.Errorf("select login history: %w", err)
	}
	defer rows.Close()

	var history []models.LoginEntry
	for rows.Next() {
		var entry models.LoginEntry
		if err := rows.Scan(&entry.At, &entry.SourceIP, &entry.Device); err != nil {
			return nil, fmt.Errorf("scan login history: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read login history: %w", err)
	}
	return history, nil
}

// SetChallenge stores a fresh nonce and lazily clears an elapsed lock in
// the same statement.
func (s *PostgresAccountStore) SetChallenge(ctx context.Context, address domain.Address, nonce string, now time.Time) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE accounts SET
			nonce = $2,
			nonce_issued_at = $3,
			failed_attempts = CASE WHEN locked_until IS NOT NULL AND locked_until <= $3
			                       THEN 0 ELSE failed_attempts END,
			locked_until    = CASE WHEN locked_until IS NOT NULL AND locked_until <= $3
			                       THEN NULL ELSE locked_until END,
			updated_at = $3
		WHERE address = $1`, address, nonce, now)
	if err != nil {
		return fmt.Errorf("set challenge: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// ConsumeChallenge clears the nonce with a conditional UPDATE keyed on the
// expected value, then records the login entry and trims history, all in
// one transaction. A raced or replaced nonce affects zero rows.
func (s *PostgresAccountStore) ConsumeChallenge(ctx context.Context, address domain.Address, expected string, entry models.LoginEntry, historyLimit int, now time.Time) (*models.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin consume challenge: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE accounts SET
			nonce = NULL, nonce_issued_at = NULL,
			failed_attempts = 0, locked_until = NULL,
			last_login = $3, updated_at = $3
		WHERE address = $1 AND nonce = $2`, address, expected, now)
	if err != nil {
		return nil, fmt.Errorf("consume challenge: %w", err)
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM accounts WHERE address = $1)`, address).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check account exists: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("challenge already consumed: %w", sentinel.ErrAlreadyUsed)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO login_history (address, at, source_ip, device)
		VALUES ($1, $2, $3, $4)`,
		address, entry.At, entry.SourceIP, entry.Device); err != nil {
		return nil, fmt.Errorf("insert login history: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM login_history
		WHERE address = $1 AND id NOT IN (
			SELECT id FROM login_history WHERE address = $1
			ORDER BY at DESC, id DESC LIMIT $2
		)`, address, historyLimit); err != nil {
		return nil, fmt.Errorf("trim login history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit consume challenge: %w", err)
	}
	return s.FindByAddress(ctx, address)
}

// RecordFailure bumps the failure counter in one statement: an elapsed
// lock restarts the count at one, reaching the threshold stamps the lock
// window.
func (s *PostgresAccountStore) RecordFailure(ctx context.Context, address domain.Address, threshold int, lockFor time.Duration, now time.Time) (int, bool, error) {
	var attempts int
	err := s.pool.QueryRow(ctx, `
		UPDATE accounts SET
			failed_attempts = CASE WHEN locked_until IS NOT NULL AND locked_until <= $2
			                       THEN 1 ELSE failed_attempts + 1 END,
			locked_until = CASE
				WHEN (CASE WHEN locked_until IS NOT NULL AND locked_until <= $2
				           THEN 1 ELSE failed_attempts + 1 END) >= $3 THEN $4
				WHEN locked_until IS NOT NULL AND locked_until <= $2 THEN NULL
				ELSE locked_until END,
			updated_at = $2
		WHERE address = $1
		RETURNING failed_attempts`,
		address, now, threshold, now.Add(lockFor)).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
		}
		return 0, false, fmt.Errorf("record failed attempt: %w", err)
	}
	return attempts, attempts >= threshold, nil
}

func (s *PostgresAccountStore) UpdateProfile(ctx context.Context, address domain.Address, update models.ProfileUpdate, now time.Time) (*models.Account, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE accounts SET
			email = COALESCE($2, email),
			email_verified = COALESCE($3, email_verified),
			photo_hash = COALESCE($4, photo_hash),
			updated_at = $5
		WHERE address = $1`,
		address, update.Email, update.EmailVerified, update.PhotoHash, now)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	return s.FindByAddress(ctx, address)
}

func rolesToText(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
