package profile

import (
	"context"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Profile, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Profile, int, error)
	SetWallet(ctx context.Context, id uuid.UUID, address string) error
}
