package medication

import (
	"context"

	"github.com/google/uuid"
)

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Medication, int, error)
	ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
}
