// Package postgres is the User-Entitlement service's durable repository,
// built on raw parameterized SQL via sqlx, matching the style the catalog
// repository uses for the same store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/accessentitlement/platform/internal/entitlement"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (r *Repository) CreateUser(ctx context.Context, username string) (entitlement.User, error) {
	const q = `INSERT INTO users (username) VALUES ($1) RETURNING id, username`
	var out entitlement.User
	if err := r.db.GetContext(ctx, &out, q, username); err != nil {
		return entitlement.User{}, err
	}
	return out, nil
}

// CreateOrReuseRequest implements the full create-or-reuse algorithm as one
// transaction: look up the existing row for the triple, reject if
// active/pending, reuse the row if revoked/rejected, otherwise insert fresh.
func (r *Repository) CreateOrReuseRequest(ctx context.Context, userID int64, kind entitlement.Kind, itemID int64, itemName *string, newRequestID string) (entitlement.UserEntitlement, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entitlement.UserEntitlement{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var existing entitlement.UserEntitlement
	const selectQ = `
		SELECT id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published
		FROM user_entitlements
		WHERE user_id = $1 AND kind = $2 AND item_id = $3
		FOR UPDATE`
	err = tx.GetContext(ctx, &existing, selectQ, userID, kind, itemID)

	switch {
	case err != nil && !isNoRows(err):
		return entitlement.UserEntitlement{}, err

	case err == nil && existing.IsActiveOrPending():
		return entitlement.UserEntitlement{}, entitlement.ErrAlreadyActiveOrPending

	case err == nil && existing.IsReusable():
		const updateQ = `
			UPDATE user_entitlements
			SET status = 'pending', request_id = $1, assigned_at = NULL, job_published = FALSE, item_name = $2
			WHERE id = $3
			RETURNING id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published`
		var out entitlement.UserEntitlement
		if err := tx.GetContext(ctx, &out, updateQ, newRequestID, itemName, existing.ID); err != nil {
			return entitlement.UserEntitlement{}, err
		}
		if err := tx.Commit(); err != nil {
			return entitlement.UserEntitlement{}, err
		}
		return out, nil

	default:
		const insertQ = `
			INSERT INTO user_entitlements (user_id, kind, item_id, item_name, status, request_id, job_published)
			VALUES ($1, $2, $3, $4, 'pending', $5, FALSE)
			RETURNING id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published`
		var out entitlement.UserEntitlement
		if err := tx.GetContext(ctx, &out, insertQ, userID, kind, itemID, itemName, newRequestID); err != nil {
			return entitlement.UserEntitlement{}, err
		}
		if err := tx.Commit(); err != nil {
			return entitlement.UserEntitlement{}, err
		}
		return out, nil
	}
}

func (r *Repository) MarkJobPublished(ctx context.Context, id int64, published bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE user_entitlements SET job_published = $1 WHERE id = $2`, published, id)
	return err
}

func (r *Repository) FindByRequestID(ctx context.Context, requestID string) (entitlement.UserEntitlement, error) {
	const q = `
		SELECT id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published
		FROM user_entitlements
		WHERE request_id = $1`
	var out entitlement.UserEntitlement
	err := r.db.GetContext(ctx, &out, q, requestID)
	if isNoRows(err) {
		return entitlement.UserEntitlement{}, entitlement.ErrNotFound
	}
	return out, err
}

// ApplyResult is idempotent: re-applying the same outcome to a row already
// in the target state is a harmless no-op UPDATE.
func (r *Repository) ApplyResult(ctx context.Context, id int64, approved bool, now time.Time) error {
	status := "rejected"
	if approved {
		status = "active"
	}
	const q = `
		UPDATE user_entitlements
		SET status = $1, assigned_at = CASE WHEN $2 THEN $3 ELSE assigned_at END
		WHERE id = $4 AND status = 'pending'`
	_, err := r.db.ExecContext(ctx, q, status, approved, now, id)
	return err
}

func (r *Repository) FindActiveOrPendingByTriple(ctx context.Context, userID int64, kind entitlement.Kind, itemID int64) (entitlement.UserEntitlement, error) {
	const q = `
		SELECT id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published
		FROM user_entitlements
		WHERE user_id = $1 AND kind = $2 AND item_id = $3 AND status IN ('active', 'pending')`
	var out entitlement.UserEntitlement
	err := r.db.GetContext(ctx, &out, q, userID, kind, itemID)
	if isNoRows(err) {
		return entitlement.UserEntitlement{}, entitlement.ErrNotFound
	}
	return out, err
}

func (r *Repository) Revoke(ctx context.Context, id int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE user_entitlements SET status = 'revoked', assigned_at = $1 WHERE id = $2`, now, id)
	return err
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]entitlement.UserEntitlement, error) {
	const q = `
		SELECT id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published
		FROM user_entitlements
		WHERE user_id = $1
		ORDER BY id`
	var out []entitlement.UserEntitlement
	err := r.db.SelectContext(ctx, &out, q, userID)
	return out, err
}

func (r *Repository) ListActiveGroupsByUser(ctx context.Context, userID int64) ([]entitlement.UserEntitlement, error) {
	const q = `
		SELECT id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published
		FROM user_entitlements
		WHERE user_id = $1 AND kind = 'group' AND status = 'active'
		ORDER BY id`
	var out []entitlement.UserEntitlement
	err := r.db.SelectContext(ctx, &out, q, userID)
	return out, err
}

func (r *Repository) ListUnpublishedPending(ctx context.Context) ([]entitlement.UserEntitlement, error) {
	const q = `
		SELECT id, user_id, kind, item_id, item_name, status, request_id, assigned_at, job_published
		FROM user_entitlements
		WHERE status = 'pending' AND job_published = FALSE
		ORDER BY id`
	var out []entitlement.UserEntitlement
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

// IsNoRows reports whether err indicates "row not found".
func IsNoRows(err error) bool { return isNoRows(err) }
