package medication

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo MedicationRepository
	now  func() time.Time
}

func NewService(repo MedicationRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if m.MedicineName == "" {
		return fmt.Errorf("medicine_name is required")
	}
	if m.ExpiryDate.IsZero() {
		return fmt.Errorf("expiry_date is required")
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, m *Medication) error {
	if m.MedicineName == "" {
		return fmt.Errorf("medicine_name is required")
	}
	if m.ExpiryDate.IsZero() {
		return fmt.Errorf("expiry_date is required")
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// TrackedMedication pairs a medication row with its expiry classification.
type TrackedMedication struct {
	*Medication
	Expiry ExpiryInfo `json:"expiry"`
}

// ListByPatient returns the patient's medications, soonest expiry first, each
// with its classification evaluated against the current time.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TrackedMedication, int, error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	tracked := make([]*TrackedMedication, len(items))
	for i, m := range items {
		tracked[i] = &TrackedMedication{Medication: m, Expiry: m.ExpiryAt(now)}
	}
	return tracked, total, nil
}
