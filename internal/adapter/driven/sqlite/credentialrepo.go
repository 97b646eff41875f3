package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

const credentialColumns = `id, ciphertext, provider, active, last_used_at, fail_count, disabled_until, created_at`

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// It stores ciphertext only; encryption happens above this layer.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Create inserts a new credential record.
func (r *CredentialRepo) Create(ctx context.Context, cred model.Credential) error {
	const query = `INSERT INTO credentials (` + credentialColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	createdAt := cred.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		cred.ID,
		cred.Ciphertext,
		cred.Provider,
		cred.Active,
		nullTime(cred.LastUsedAt),
		cred.FailCount,
		nullTime(cred.DisabledUntil),
		formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("create credential %s: %w", cred.ID, err)
	}
	return nil
}

// Get returns the credential with the given id.
func (r *CredentialRepo) Get(ctx context.Context, id string) (*model.Credential, error) {
	const query = `SELECT ` + credentialColumns + ` FROM credentials WHERE id = ?`

	cred, err := scanCredential(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %s: %w", id, err)
	}
	return cred, nil
}

// NextUsable returns the least recently used usable credential, or nil when
// none is usable. Never-used credentials sort first.
func (r *CredentialRepo) NextUsable(ctx context.Context, now time.Time) (*model.Credential, error) {
	const query = `SELECT ` + credentialColumns + ` FROM credentials
		WHERE active = 1 AND (disabled_until IS NULL OR disabled_until < ?)
		ORDER BY last_used_at ASC NULLS FIRST, created_at ASC
		LIMIT 1`

	cred, err := scanCredential(r.db.Reader.QueryRowContext(ctx, query, formatTime(now)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select usable credential: %w", err)
	}
	return cred, nil
}

// List returns all credentials, most recently used first and never-used last.
func (r *CredentialRepo) List(ctx context.Context) ([]model.Credential, error) {
	const query = `SELECT ` + credentialColumns + ` FROM credentials
		ORDER BY last_used_at DESC NULLS LAST, created_at DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// TouchLastUsed records that the credential was handed out at the given time.
func (r *CredentialRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE credentials SET last_used_at = ? WHERE id = ?`
	return r.exec(ctx, "touch credential", id, query, formatTime(at), id)
}

// IncrementFailCount adds one to the failure counter and returns the new value.
func (r *CredentialRepo) IncrementFailCount(ctx context.Context, id string) (int, error) {
	const query = `UPDATE credentials SET fail_count = fail_count + 1 WHERE id = ? RETURNING fail_count`

	var count int
	err := r.db.Writer.QueryRowContext(ctx, query, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, driven.ErrCredentialNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment fail count %s: %w", id, err)
	}
	return count, nil
}

// SetDisabledUntil sets the end of the disable window.
func (r *CredentialRepo) SetDisabledUntil(ctx context.Context, id string, until time.Time) error {
	const query = `UPDATE credentials SET disabled_until = ? WHERE id = ?`
	return r.exec(ctx, "disable credential", id, query, formatTime(until), id)
}

// ResetHealth clears the failure counter and disable window.
func (r *CredentialRepo) ResetHealth(ctx context.Context, id string) error {
	const query = `UPDATE credentials SET fail_count = 0, disabled_until = NULL WHERE id = ?`
	return r.exec(ctx, "reset credential health", id, query, id)
}

// SetActive flips the active flag. Reactivation also clears failure state.
func (r *CredentialRepo) SetActive(ctx context.Context, id string, active bool) error {
	if active {
		const query = `UPDATE credentials SET active = 1, fail_count = 0, disabled_until = NULL WHERE id = ?`
		return r.exec(ctx, "reactivate credential", id, query, id)
	}
	const query = `UPDATE credentials SET active = 0 WHERE id = ?`
	return r.exec(ctx, "deactivate credential", id, query, id)
}

// Delete permanently removes the credential.
func (r *CredentialRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM credentials WHERE id = ?`
	return r.exec(ctx, "delete credential", id, query, id)
}

// exec runs a single-row write and maps zero affected rows to ErrCredentialNotFound.
func (r *CredentialRepo) exec(ctx context.Context, op, id, query string, args ...any) error {
	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return driven.ErrCredentialNotFound
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(s scanner) (*model.Credential, error) {
	var cred model.Credential
	var lastUsedAt, disabledUntil sql.NullString
	var createdAt string

	err := s.Scan(
		&cred.ID,
		&cred.Ciphertext,
		&cred.Provider,
		&cred.Active,
		&lastUsedAt,
		&cred.FailCount,
		&disabledUntil,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if cred.LastUsedAt, err = parseNullTime(lastUsedAt); err != nil {
		return nil, fmt.Errorf("parse last_used_at: %w", err)
	}
	if cred.DisabledUntil, err = parseNullTime(disabledUntil); err != nil {
		return nil, fmt.Errorf("parse disabled_until: %w", err)
	}
	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &cred, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
