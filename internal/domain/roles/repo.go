package roles

import (
	"context"

	"github.com/google/uuid"
)

type RoleRepository interface {
	Add(ctx context.Context, userID uuid.UUID, role string) (*UserRole, error)
	Remove(ctx context.Context, userID uuid.UUID, role string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserRole, error)
	ListAll(ctx context.Context) ([]*UserRole, error)
}
