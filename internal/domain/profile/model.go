package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile maps to the profiles table. The row ID is the auth subject the
// profile belongs to, so a patient's token always resolves to their own row.
type Profile struct {
	ID               uuid.UUID              `db:"id" json:"id"`
	FirstName        string                 `db:"first_name" json:"first_name"`
	LastName         string                 `db:"last_name" json:"last_name"`
	DateOfBirth      *time.Time             `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string                `db:"gender" json:"gender,omitempty"`
	BloodType        *string                `db:"blood_type" json:"blood_type,omitempty"`
	Phone            *string                `db:"phone" json:"phone,omitempty"`
	Address          map[string]interface{} `db:"address" json:"address,omitempty"`
	EmergencyContact map[string]interface{} `db:"emergency_contact" json:"emergency_contact,omitempty"`
	WalletAddress    *string                `db:"wallet_address" json:"wallet_address,omitempty"`
	WalletVerified   bool                   `db:"wallet_verified" json:"wallet_verified"`
	CreatedAt        time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time              `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display and search results.
func (p *Profile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
