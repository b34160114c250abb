package share

import (
	"context"

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

type shareTokenRepoPG struct{ pool *pgxpool.Pool }

func NewShareTokenRepoPG(pool *pgxpool.Pool) ShareTokenRepository {
	return &shareTokenRepoPG{pool: pool}
}

func (r *shareTokenRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const tokCols = `id, patient_id, access_level, valid_from, valid_until,
	is_active, usage_count, max_usage, created_at`

func (r *shareTokenRepoPG) scanRow(row pgx.Row) (*ShareToken, error) {
	var t ShareToken
	err := row.Scan(&t.ID, &t.PatientID, &t.AccessLevel, &t.ValidFrom,
		&t.ValidUntil, &t.IsActive, &t.UsageCount, &t.MaxUsage, &t.CreatedAt)
	return &t, err
}

func (r *shareTokenRepoPG) Create(ctx context.Context, t *ShareToken) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO share_tokens (id, patient_id, access_level, valid_from,
			valid_until, is_active, usage_count, max_usage)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.PatientID, t.AccessLevel, t.ValidFrom,
		t.ValidUntil, t.IsActive, t.UsageCount, t.MaxUsage)
	return err
}

func (r *shareTokenRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ShareToken, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+tokCols+` FROM share_tokens WHERE id = $1`, id))
}

func (r *shareTokenRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE share_tokens SET is_active=FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shareTokenRepoPG) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE share_tokens SET usage_count = usage_count + 1 WHERE id = $1`, id)
	return err
}

func (r *shareTokenRepoPG) LatestActiveByPatient(ctx context.Context, patientID uuid.UUID) (*ShareToken, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `
		SELECT `+tokCols+` FROM share_tokens
		WHERE patient_id = $1 AND is_active = TRUE AND valid_until > NOW()
		ORDER BY created_at DESC LIMIT 1`, patientID))
}

func (r *shareTokenRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ShareToken, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM share_tokens WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+tokCols+` FROM share_tokens
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ShareToken
	for rows.Next() {
		t, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, nil
}
