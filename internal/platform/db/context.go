package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so a repository can run against the
// shared pool or against a transaction pinned to the request context.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type contextKey string

const connKey contextKey = "db_conn"

// WithConn returns a context carrying the given connection or transaction.
// Repositories route their queries through it when present.
func WithConn(ctx context.Context, conn Queryable) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// ConnFromContext retrieves the pinned connection from the context, or nil.
func ConnFromContext(ctx context.Context) Queryable {
	conn, _ := ctx.Value(connKey).(Queryable)
	return conn
}
