package share

import (
	"time"

	"github.com/google/uuid"
)

// AccessLevel controls which record categories a resolved share exposes.
// "emergency" and "medical" are the same clinical tier under two labels; the
// original product surfaced "emergency" on the issuing side and "medical" on
// the reading side.
type AccessLevel string

const (
	AccessBasic     AccessLevel = "basic"
	AccessEmergency AccessLevel = "emergency"
	AccessMedical   AccessLevel = "medical"
	AccessFull      AccessLevel = "full"
)

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessBasic, AccessEmergency, AccessMedical, AccessFull:
		return true
	}
	return false
}

// IncludesClinical reports whether the level grants medical records,
// prescriptions, and medications in addition to identity fields.
func (l AccessLevel) IncludesClinical() bool {
	return l == AccessEmergency || l == AccessMedical || l == AccessFull
}

// ShareToken maps to the share_tokens table: one row per issued QR code.
// A token stops resolving when deactivated, outside its validity window, or
// past its usage cap.
type ShareToken struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	PatientID   uuid.UUID   `db:"patient_id" json:"patient_id"`
	AccessLevel AccessLevel `db:"access_level" json:"access_level"`
	ValidFrom   time.Time   `db:"valid_from" json:"valid_from"`
	ValidUntil  time.Time   `db:"valid_until" json:"valid_until"`
	IsActive    bool        `db:"is_active" json:"is_active"`
	UsageCount  int         `db:"usage_count" json:"usage_count"`
	MaxUsage    *int        `db:"max_usage" json:"max_usage,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Live reports whether the token may still be resolved at the given instant.
func (t *ShareToken) Live(now time.Time) bool {
	if !t.IsActive {
		return false
	}
	if now.Before(t.ValidFrom) || now.After(t.ValidUntil) {
		return false
	}
	if t.MaxUsage != nil && t.UsageCount >= *t.MaxUsage {
		return false
	}
	return true
}
