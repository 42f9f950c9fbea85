// Package storage persists installations, builds, task outcomes and account
// approvals in PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/build-warden/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations.
type Store interface {
	CreateInstallation(ctx context.Context, inst *core.Installation) error
	ListInstallations(ctx context.Context) ([]core.Installation, error)

	SaveBuild(ctx context.Context, build *core.BuildRecord) (int64, error)
	GetBuildByID(ctx context.Context, id int64) (*core.BuildRecord, error)
	UpdateBuildStatus(ctx context.Context, id int64, status string) error

	SaveTaskRecord(ctx context.Context, rec *core.TaskRecord) error
	GetTaskRecord(ctx context.Context, taskID string) (*core.TaskRecord, error)
	ListTaskRecords(ctx context.Context, limit int) ([]core.TaskRecord, error)

	GetAllowlistEntry(ctx context.Context, account string) (*core.AllowlistEntry, error)
	SaveAllowlistEntry(ctx context.Context, entry *core.AllowlistEntry) error
	ListAllowlist(ctx context.Context, status core.AllowlistStatus) ([]core.AllowlistEntry, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// CreateInstallation records an installation. A repeated installation of the
// same ID updates the account details.
func (s *postgresStore) CreateInstallation(ctx context.Context, inst *core.Installation) error {
	query := `
		INSERT INTO installations (installation_id, account_login, account_type, sender_login, created_at)
		VALUES (:installation_id, :account_login, :account_type, :sender_login, :created_at)
		ON CONFLICT (installation_id) DO UPDATE SET
			account_login = EXCLUDED.account_login,
			account_type = EXCLUDED.account_type,
			sender_login = EXCLUDED.sender_login`
	rec := *inst
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if _, err := s.db.NamedExecContext(ctx, query, &rec); err != nil {
		return fmt.Errorf("failed to save installation %d: %w", inst.InstallationID, err)
	}
	return nil
}

// ListInstallations returns all installations, newest first.
func (s *postgresStore) ListInstallations(ctx context.Context) ([]core.Installation, error) {
	var out []core.Installation
	query := `
		SELECT id, installation_id, account_login, account_type, sender_login, created_at
		FROM installations
		ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list installations: %w", err)
	}
	return out, nil
}

// SaveBuild inserts a build and returns its ID.
func (s *postgresStore) SaveBuild(ctx context.Context, build *core.BuildRecord) (int64, error) {
	query := `
		INSERT INTO builds (build_id, backend, chroot, status, web_url, repo_full_name,
			installation_id, trigger_type, trigger_key, commit_sha, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		build.BuildID, build.Backend, build.Chroot, build.Status, build.WebURL, build.RepoFullName,
		build.InstallationID, build.Trigger, build.TriggerKey, build.CommitSHA, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save build %s: %w", build.BuildID, err)
	}
	return id, nil
}

// GetBuildByID retrieves a build by its database ID.
func (s *postgresStore) GetBuildByID(ctx context.Context, id int64) (*core.BuildRecord, error) {
	var b core.BuildRecord
	query := `
		SELECT id, build_id, backend, chroot, status, web_url, repo_full_name,
			installation_id, trigger_type, trigger_key, commit_sha, created_at
		FROM builds
		WHERE id = $1`
	if err := s.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("build %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &b, nil
}

// UpdateBuildStatus sets the backend status of a build.
func (s *postgresStore) UpdateBuildStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE builds SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update build %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("build %d: %w", id, ErrNotFound)
	}
	return nil
}

// SaveTaskRecord upserts the record of a unit of work keyed by its task ID.
func (s *postgresStore) SaveTaskRecord(ctx context.Context, rec *core.TaskRecord) error {
	query := `
		INSERT INTO task_results (task_id, task_name, state, attempt, success, details, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (task_id) DO UPDATE SET
			state = EXCLUDED.state,
			attempt = EXCLUDED.attempt,
			success = EXCLUDED.success,
			details = COALESCE(EXCLUDED.details, task_results.details),
			updated_at = EXCLUDED.updated_at`
	var details any
	if len(rec.Details) > 0 {
		details = []byte(rec.Details)
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query, rec.TaskID, rec.TaskName, rec.State, rec.Attempt, rec.Success, details, updated)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", rec.TaskID, err)
	}
	return nil
}

// GetTaskRecord retrieves the record of a unit of work.
func (s *postgresStore) GetTaskRecord(ctx context.Context, taskID string) (*core.TaskRecord, error) {
	var rec core.TaskRecord
	query := `
		SELECT task_id, task_name, state, attempt, success, COALESCE(details, '{}'::jsonb) AS details, updated_at
		FROM task_results
		WHERE task_id = $1`
	if err := s.db.GetContext(ctx, &rec, query, taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// ListTaskRecords returns the most recently updated task records.
func (s *postgresStore) ListTaskRecords(ctx context.Context, limit int) ([]core.TaskRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []core.TaskRecord
	query := `
		SELECT task_id, task_name, state, attempt, success, COALESCE(details, '{}'::jsonb) AS details, updated_at
		FROM task_results
		ORDER BY updated_at DESC
		LIMIT $1`
	if err := s.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return out, nil
}

// GetAllowlistEntry retrieves the approval of an account.
func (s *postgresStore) GetAllowlistEntry(ctx context.Context, account string) (*core.AllowlistEntry, error) {
	var e core.AllowlistEntry
	query := `SELECT account, status, sender, updated_at FROM allowlist WHERE account = $1`
	if err := s.db.GetContext(ctx, &e, query, account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", account, ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

// SaveAllowlistEntry upserts the approval of an account.
func (s *postgresStore) SaveAllowlistEntry(ctx context.Context, entry *core.AllowlistEntry) error {
	query := `
		INSERT INTO allowlist (account, status, sender, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account) DO UPDATE SET
			status = EXCLUDED.status,
			sender = EXCLUDED.sender,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, query, entry.Account, entry.Status, entry.Sender, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save allowlist entry for %s: %w", entry.Account, err)
	}
	return nil
}

// ListAllowlist returns accounts in the given state, or all accounts when
// status is empty.
func (s *postgresStore) ListAllowlist(ctx context.Context, status core.AllowlistStatus) ([]core.AllowlistEntry, error) {
	var out []core.AllowlistEntry
	query := `SELECT account, status, sender, updated_at FROM allowlist`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY account`
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list allowlist: %w", err)
	}
	return out, nil
}
