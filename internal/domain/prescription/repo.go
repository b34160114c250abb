package prescription

import (
	"context"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
}
