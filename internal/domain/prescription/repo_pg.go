package prescription

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

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const rxCols = `id, patient_id, doctor_id, diagnosis, medications, instructions,
	status, prescription_date, valid_until, created_at`

func (r *prescriptionRepoPG) scanRow(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.Diagnosis, &p.Medications,
		&p.Instructions, &p.Status, &p.PrescriptionDate, &p.ValidUntil, &p.CreatedAt)
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, diagnosis,
			medications, instructions, status, prescription_date, valid_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.PatientID, p.DoctorID, p.Diagnosis,
		p.Medications, p.Instructions, p.Status, p.PrescriptionDate, p.ValidUntil)
	return err
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET diagnosis=$2, medications=$3, instructions=$4,
			status=$5, prescription_date=$6, valid_until=$7
		WHERE id = $1`,
		p.ID, p.Diagnosis, p.Medications, p.Instructions,
		p.Status, p.PrescriptionDate, p.ValidUntil)
	return err
}

func (r *prescriptionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	return err
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+rxCols+` FROM prescriptions
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *prescriptionRepoPG) ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+rxCols+` FROM prescriptions
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}
