package share

import (
	"context"

	"github.com/google/uuid"
)

type ShareTokenRepository interface {
	Create(ctx context.Context, t *ShareToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*ShareToken, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	LatestActiveByPatient(ctx context.Context, patientID uuid.UUID) (*ShareToken, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ShareToken, int, error)
}
