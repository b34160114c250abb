package profile

import (
	"context"
	"fmt"

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

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepoPG{pool: pool}
}

func (r *profileRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const profCols = `id, first_name, last_name, date_of_birth, gender, blood_type,
	phone, address, emergency_contact, wallet_address, wallet_verified,
	created_at, updated_at`

func (r *profileRepoPG) scanRow(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.BloodType, &p.Phone, &p.Address, &p.EmergencyContact,
		&p.WalletAddress, &p.WalletVerified, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *profileRepoPG) Create(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO profiles (id, first_name, last_name, date_of_birth, gender,
			blood_type, phone, address, emergency_contact)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.BloodType, p.Phone, p.Address, p.EmergencyContact)
	return err
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+profCols+` FROM profiles WHERE id = $1`, id))
}

func (r *profileRepoPG) Update(ctx context.Context, p *Profile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE profiles SET first_name=$2, last_name=$3, date_of_birth=$4,
			gender=$5, blood_type=$6, phone=$7, address=$8,
			emergency_contact=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.BloodType, p.Phone, p.Address, p.EmergencyContact)
	return err
}

func (r *profileRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	return err
}

func (r *profileRepoPG) List(ctx context.Context, limit, offset int) ([]*Profile, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+profCols+` FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Profile
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *profileRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Profile, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	n := 1
	if name := params["name"]; name != "" {
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d)`, n, n)
		args = append(args, "%"+name+"%")
		n++
	}
	if gender := params["gender"]; gender != "" {
		where += fmt.Sprintf(` AND gender = $%d`, n)
		args = append(args, gender)
		n++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM profiles `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+profCols+` FROM profiles %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, n, n+1)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Profile
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *profileRepoPG) SetWallet(ctx context.Context, id uuid.UUID, address string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE profiles SET wallet_address=$2, wallet_verified=TRUE, updated_at=NOW()
		WHERE id = $1`, id, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
