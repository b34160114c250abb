package medication

import (
	"fmt"
	"time"
)

// ExpiryStatus buckets a medication by how close its expiry date is.
type ExpiryStatus string

const (
	ExpiryExpired  ExpiryStatus = "expired"
	ExpiryCritical ExpiryStatus = "critical"
	ExpiryWarning  ExpiryStatus = "warning"
	ExpiryGood     ExpiryStatus = "good"
)

const (
	criticalWithinDays = 7
	warningWithinDays  = 21
)

// DaysUntil returns the number of whole calendar days from now to expiry,
// ignoring the time of day on either side. Negative when expiry has passed.
func DaysUntil(expiry, now time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n) / (24 * time.Hour))
}

// Classify buckets a day count. Both threshold boundaries are inclusive:
// day 7 is still critical, day 21 is still a warning.
func Classify(days int) ExpiryStatus {
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= criticalWithinDays:
		return ExpiryCritical
	case days <= warningWithinDays:
		return ExpiryWarning
	default:
		return ExpiryGood
	}
}

// Label returns the user-facing text for a day count.
func Label(days int) string {
	switch Classify(days) {
	case ExpiryExpired:
		return "Expired"
	case ExpiryCritical, ExpiryWarning:
		if days == 1 {
			return "1 day left"
		}
		return fmt.Sprintf("%d days left", days)
	default:
		return "Good"
	}
}

// ExpiryInfo is the classifier output attached to medication list responses.
type ExpiryInfo struct {
	DaysUntilExpiry int          `json:"days_until_expiry"`
	Status          ExpiryStatus `json:"status"`
	Label           string       `json:"label"`
}

// ExpiryAt evaluates the medication's expiry against the given instant.
func (m *Medication) ExpiryAt(now time.Time) ExpiryInfo {
	days := DaysUntil(m.ExpiryDate, now)
	return ExpiryInfo{
		DaysUntilExpiry: days,
		Status:          Classify(days),
		Label:           Label(days),
	}
}
