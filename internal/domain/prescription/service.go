package prescription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo PrescriptionRepository
	now  func() time.Time
}

func NewService(repo PrescriptionRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !validStatus(p.Status) {
		return fmt.Errorf("status must be %q, %q, or %q", StatusActive, StatusCompleted, StatusCancelled)
	}
	if p.PrescriptionDate.IsZero() {
		p.PrescriptionDate = s.now().UTC()
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePrescription(ctx context.Context, p *Prescription) error {
	if p.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	if !validStatus(p.Status) {
		return fmt.Errorf("status must be %q, %q, or %q", StatusActive, StatusCompleted, StatusCancelled)
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
