package roles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthpass/healthpass/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type roleRepoPG struct{ pool *pgxpool.Pool }

func NewRoleRepoPG(pool *pgxpool.Pool) RoleRepository {
	return &roleRepoPG{pool: pool}
}

func (r *roleRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// uniqueViolation is the Postgres error code raised by the
// UNIQUE(user_id, role) constraint.
const uniqueViolation = "23505"

func (r *roleRepoPG) Add(ctx context.Context, userID uuid.UUID, role string) (*UserRole, error) {
	ur := &UserRole{ID: uuid.New(), UserID: userID, Role: role}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO user_roles (id, user_id, role)
		VALUES ($1,$2,$3) RETURNING created_at`,
		ur.ID, ur.UserID, ur.Role).Scan(&ur.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateRole
		}
		return nil, err
	}
	return ur, nil
}

// Remove deletes the assignment if present. Removing a role the user does not
// hold is a no-op success.
func (r *roleRepoPG) Remove(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}

func (r *roleRepoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserRole, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, user_id, role, created_at FROM user_roles
		WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRoles(rows)
}

func (r *roleRepoPG) ListAll(ctx context.Context) ([]*UserRole, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, user_id, role, created_at FROM user_roles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRoles(rows)
}

func scanRoles(rows pgx.Rows) ([]*UserRole, error) {
	var items []*UserRole
	for rows.Next() {
		var ur UserRole
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.Role, &ur.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &ur)
	}
	return items, rows.Err()
}
