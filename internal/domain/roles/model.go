package roles

import (
	"time"

	"github.com/google/uuid"
)

// UserRole maps to the user_roles table. A (user_id, role) pair is unique;
// the same user can hold several distinct roles.
type UserRole struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	RolePatient    = "patient"
	RoleDoctor     = "doctor"
	RoleAdmin      = "admin"
	RolePharmacist = "pharmacist"
)

func ValidRole(r string) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin, RolePharmacist:
		return true
	}
	return false
}
