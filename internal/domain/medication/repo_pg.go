package medication

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

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

func (r *medicationRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const medCols = `id, patient_id, prescription_id, medicine_name, dosage,
	frequency, quantity, expiry_date, manufacturing_date, dispensed_date,
	batch_number, reminder_sent, created_at`

func (r *medicationRepoPG) scanRow(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.PatientID, &m.PrescriptionID, &m.MedicineName,
		&m.Dosage, &m.Frequency, &m.Quantity, &m.ExpiryDate,
		&m.ManufacturingDate, &m.DispensedDate, &m.BatchNumber,
		&m.ReminderSent, &m.CreatedAt)
	return &m, err
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medications (id, patient_id, prescription_id, medicine_name,
			dosage, frequency, quantity, expiry_date, manufacturing_date,
			dispensed_date, batch_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		m.ID, m.PatientID, m.PrescriptionID, m.MedicineName,
		m.Dosage, m.Frequency, m.Quantity, m.ExpiryDate,
		m.ManufacturingDate, m.DispensedDate, m.BatchNumber)
	return err
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+medCols+` FROM medications WHERE id = $1`, id))
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET medicine_name=$2, dosage=$3, frequency=$4,
			quantity=$5, expiry_date=$6, manufacturing_date=$7,
			dispensed_date=$8, batch_number=$9, reminder_sent=$10
		WHERE id = $1`,
		m.ID, m.MedicineName, m.Dosage, m.Frequency, m.Quantity,
		m.ExpiryDate, m.ManufacturingDate, m.DispensedDate,
		m.BatchNumber, m.ReminderSent)
	return err
}

func (r *medicationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	return err
}

// ListByPatient orders by expiry date, soonest first, so the tracker surfaces
// what needs attention at the top.
func (r *medicationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+medCols+` FROM medications
		WHERE patient_id = $1 ORDER BY expiry_date ASC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

func (r *medicationRepoPG) ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+medCols+` FROM medications
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}
