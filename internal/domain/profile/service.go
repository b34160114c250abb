package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthpass/healthpass/internal/platform/wallet"
)

type Service struct {
	repo ProfileRepository
}

func NewService(repo ProfileRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProfile(ctx context.Context, p *Profile) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, p *Profile) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SearchProfiles(ctx context.Context, params map[string]string, limit, offset int) ([]*Profile, int, error) {
	if len(params) == 0 {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, params, limit, offset)
}

// AttachWallet proves control of an Ethereum address and records it on the
// profile. The signature must be an EIP-191 personal signature over the
// canonical ownership message for this profile ID.
func (s *Service) AttachWallet(ctx context.Context, id uuid.UUID, address, signature string) error {
	if address == "" {
		return fmt.Errorf("address is required")
	}
	if signature == "" {
		return fmt.Errorf("signature is required")
	}
	ok, err := wallet.VerifyOwnership(id.String(), address, signature)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}
	if !ok {
		return fmt.Errorf("signature does not match address")
	}
	return s.repo.SetWallet(ctx, id, address)
}
