package records

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Create(ctx context.Context, m *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, m *MedicalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error)
}
