package records

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

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recCols = `id, patient_id, doctor_id, record_type, diagnosis,
	record_data, record_hash, created_at`

func (r *recordRepoPG) scanRow(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.RecordType,
		&m.Diagnosis, &m.RecordData, &m.RecordHash, &m.CreatedAt)
	return &m, err
}

func (r *recordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, record_type,
			diagnosis, record_data, record_hash, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.PatientID, m.DoctorID, m.RecordType,
		m.Diagnosis, m.RecordData, m.RecordHash, m.CreatedAt)
	return err
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+recCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *recordRepoPG) Update(ctx context.Context, m *MedicalRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET record_type=$2, diagnosis=$3, record_data=$4,
			record_hash=$5
		WHERE id = $1`,
		m.ID, m.RecordType, m.Diagnosis, m.RecordData, m.RecordHash)
	return err
}

func (r *recordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	return err
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_records WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recCols+` FROM medical_records
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

func (r *recordRepoPG) ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recCols+` FROM medical_records
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}
