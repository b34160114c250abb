package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription maps to the prescriptions table. Medications is the free-form
// list the prescriber entered; dispensed inventory lives in the medications
// table keyed back to the prescription.
type Prescription struct {
	ID               uuid.UUID                `db:"id" json:"id"`
	PatientID        uuid.UUID                `db:"patient_id" json:"patient_id"`
	DoctorID         *uuid.UUID               `db:"doctor_id" json:"doctor_id,omitempty"`
	Diagnosis        string                   `db:"diagnosis" json:"diagnosis"`
	Medications      []map[string]interface{} `db:"medications" json:"medications,omitempty"`
	Instructions     *string                  `db:"instructions" json:"instructions,omitempty"`
	Status           string                   `db:"status" json:"status"`
	PrescriptionDate time.Time                `db:"prescription_date" json:"prescription_date"`
	ValidUntil       *time.Time               `db:"valid_until" json:"valid_until,omitempty"`
	CreatedAt        time.Time                `db:"created_at" json:"created_at"`
}

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

func validStatus(s string) bool {
	return s == StatusActive || s == StatusCompleted || s == StatusCancelled
}
