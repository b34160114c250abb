package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication maps to the medications table: dispensed stock a patient holds,
// tracked for expiry.
type Medication struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	PrescriptionID    *uuid.UUID `db:"prescription_id" json:"prescription_id,omitempty"`
	MedicineName      string     `db:"medicine_name" json:"medicine_name"`
	Dosage            *string    `db:"dosage" json:"dosage,omitempty"`
	Frequency         *string    `db:"frequency" json:"frequency,omitempty"`
	Quantity          *int       `db:"quantity" json:"quantity,omitempty"`
	ExpiryDate        time.Time  `db:"expiry_date" json:"expiry_date"`
	ManufacturingDate *time.Time `db:"manufacturing_date" json:"manufacturing_date,omitempty"`
	DispensedDate     *time.Time `db:"dispensed_date" json:"dispensed_date,omitempty"`
	BatchNumber       *string    `db:"batch_number" json:"batch_number,omitempty"`
	ReminderSent      bool       `db:"reminder_sent" json:"reminder_sent"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}
