// Package postgres is the Access-Catalog service's durable repository,
// built on raw parameterized SQL via sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accessentitlement/platform/internal/catalog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
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

// --- Resources ---

func (r *Repository) CreateResource(ctx context.Context, res catalog.Resource) (catalog.Resource, error) {
	const q = `INSERT INTO resources (name, type, description) VALUES ($1, $2, $3) RETURNING id, name, type, description`
	var out catalog.Resource
	err := r.db.GetContext(ctx, &out, q, res.Name, res.Type, res.Description)
	return out, err
}

func (r *Repository) GetResource(ctx context.Context, id int64) (catalog.Resource, error) {
	const q = `SELECT id, name, type, description FROM resources WHERE id = $1`
	var out catalog.Resource
	err := r.db.GetContext(ctx, &out, q, id)
	return out, err
}

func (r *Repository) ListResources(ctx context.Context) ([]catalog.Resource, error) {
	const q = `SELECT id, name, type, description FROM resources ORDER BY id`
	var out []catalog.Resource
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

func (r *Repository) DeleteResource(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	return err
}

func (r *Repository) ResourceHasAccesses(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM access_resources WHERE resource_id = $1)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, q, id)
	return exists, err
}

// --- Accesses ---

func (r *Repository) CreateAccess(ctx context.Context, a catalog.Access) (catalog.Access, error) {
	const q = `INSERT INTO accesses (name) VALUES ($1) RETURNING id, name`
	var out catalog.Access
	err := r.db.GetContext(ctx, &out, q, a.Name)
	return out, err
}

func (r *Repository) GetAccess(ctx context.Context, id int64) (catalog.Access, error) {
	const q = `SELECT id, name FROM accesses WHERE id = $1`
	var out catalog.Access
	err := r.db.GetContext(ctx, &out, q, id)
	return out, err
}

func (r *Repository) ListAccesses(ctx context.Context) ([]catalog.Access, error) {
	const q = `SELECT id, name FROM accesses ORDER BY id`
	var out []catalog.Access
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

func (r *Repository) DeleteAccess(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accesses WHERE id = $1`, id)
	return err
}

func (r *Repository) AddResourceToAccess(ctx context.Context, accessID, resourceID int64) error {
	const q = `INSERT INTO access_resources (access_id, resource_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, accessID, resourceID)
	return err
}

func (r *Repository) RemoveResourceFromAccess(ctx context.Context, accessID, resourceID int64) error {
	const q = `DELETE FROM access_resources WHERE access_id = $1 AND resource_id = $2`
	_, err := r.db.ExecContext(ctx, q, accessID, resourceID)
	return err
}

func (r *Repository) AccessResources(ctx context.Context, accessID int64) ([]catalog.Resource, error) {
	const q = `
		SELECT r.id, r.name, r.type, r.description
		FROM resources r
		JOIN access_resources ar ON ar.resource_id = r.id
		WHERE ar.access_id = $1
		ORDER BY r.id`
	var out []catalog.Resource
	err := r.db.SelectContext(ctx, &out, q, accessID)
	return out, err
}

func (r *Repository) AccessHasGroups(ctx context.Context, accessID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM group_accesses WHERE access_id = $1)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, q, accessID)
	return exists, err
}

// --- Groups ---

func (r *Repository) CreateGroup(ctx context.Context, g catalog.Group) (catalog.Group, error) {
	const q = `INSERT INTO groups (name) VALUES ($1) RETURNING id, name`
	var out catalog.Group
	err := r.db.GetContext(ctx, &out, q, g.Name)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return catalog.Group{}, fmt.Errorf("group name %q already exists: %w", g.Name, err)
		}
		return catalog.Group{}, err
	}
	return out, nil
}

func (r *Repository) GetGroup(ctx context.Context, id int64) (catalog.Group, error) {
	const q = `SELECT id, name FROM groups WHERE id = $1`
	var out catalog.Group
	err := r.db.GetContext(ctx, &out, q, id)
	return out, err
}

func (r *Repository) ListGroups(ctx context.Context) ([]catalog.Group, error) {
	const q = `SELECT id, name FROM groups ORDER BY id`
	var out []catalog.Group
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

func (r *Repository) DeleteGroup(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	return err
}

func (r *Repository) AddAccessToGroup(ctx context.Context, groupID, accessID int64) error {
	const q = `INSERT INTO group_accesses (group_id, access_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, groupID, accessID)
	return err
}

func (r *Repository) RemoveAccessFromGroup(ctx context.Context, groupID, accessID int64) error {
	const q = `DELETE FROM group_accesses WHERE group_id = $1 AND access_id = $2`
	_, err := r.db.ExecContext(ctx, q, groupID, accessID)
	return err
}

func (r *Repository) GroupAccesses(ctx context.Context, groupID int64) ([]catalog.Access, error) {
	const q = `
		SELECT a.id, a.name
		FROM accesses a
		JOIN group_accesses ga ON ga.access_id = a.id
		WHERE ga.group_id = $1
		ORDER BY a.id`
	var out []catalog.Access
	err := r.db.SelectContext(ctx, &out, q, groupID)
	return out, err
}

func (r *Repository) AccessGroups(ctx context.Context, accessID int64) ([]catalog.Group, error) {
	const q = `
		SELECT g.id, g.name
		FROM groups g
		JOIN group_accesses ga ON ga.group_id = g.id
		WHERE ga.access_id = $1
		ORDER BY g.id`
	var out []catalog.Group
	err := r.db.SelectContext(ctx, &out, q, accessID)
	return out, err
}

func (r *Repository) GroupHasConflicts(ctx context.Context, groupID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM conflicts WHERE group_id_a = $1 OR group_id_b = $1)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, q, groupID)
	return exists, err
}

// --- Conflicts ---

func (r *Repository) ConflictExists(ctx context.Context, a, b int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM conflicts WHERE group_id_a = $1 AND group_id_b = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, q, a, b)
	return exists, err
}

// CreateConflictPair inserts both directional rows inside a single
// transaction so both directional rows appear or neither does.
func (r *Repository) CreateConflictPair(ctx context.Context, a, b int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO conflicts (group_id_a, group_id_b) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, q, a, b); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, q, b, a); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteConflictPair deletes both directional rows atomically.
func (r *Repository) DeleteConflictPair(ctx context.Context, a, b int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `DELETE FROM conflicts WHERE (group_id_a = $1 AND group_id_b = $2) OR (group_id_a = $2 AND group_id_b = $1)`
	if _, err := tx.ExecContext(ctx, q, a, b); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) ConflictMatrix(ctx context.Context) ([]catalog.Conflict, error) {
	const q = `SELECT group_id_a, group_id_b FROM conflicts ORDER BY group_id_a, group_id_b`
	var out []catalog.Conflict
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

// IsNoRows reports whether err indicates "row not found", the condition the
// Service layer maps to a not-found error.
func IsNoRows(err error) bool { return isNoRows(err) }
