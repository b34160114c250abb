package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthpass/healthpass/internal/platform/wallet"
)

type Service struct {
	repo RecordRepository
	now  func() time.Time
}

func NewService(repo RecordRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// hashContent is the canonical input for the stored record hash. Field order
// is fixed so the same record always hashes the same.
type hashContent struct {
	Diagnosis  string `json:"diagnosis"`
	RecordType string `json:"record_type"`
	PatientID  string `json:"patient_id"`
	Timestamp  int64  `json:"timestamp"`
}

func (s *Service) CreateRecord(ctx context.Context, m *MedicalRecord) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if m.RecordType == "" {
		return fmt.Errorf("record_type is required")
	}
	if m.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}

	m.CreatedAt = s.now().UTC()
	canonical, err := json.Marshal(hashContent{
		Diagnosis:  m.Diagnosis,
		RecordType: m.RecordType,
		PatientID:  m.PatientID.String(),
		Timestamp:  m.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal hash content: %w", err)
	}
	hash := wallet.RecordHash(canonical)
	m.RecordHash = &hash

	return s.repo.Create(ctx, m)
}

// TypedRecord pairs a record row with its parsed payload when the record type
// has a structured schema. Unknown types carry the raw map only.
type TypedRecord struct {
	*MedicalRecord
	TypedData interface{} `json:"typed_data,omitempty"`
}

func newTypedRecord(m *MedicalRecord) *TypedRecord {
	tr := &TypedRecord{MedicalRecord: m}
	if data, ok := m.TypedData(); ok {
		tr.TypedData = data
	}
	return tr
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*TypedRecord, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newTypedRecord(m), nil
}

func (s *Service) UpdateRecord(ctx context.Context, m *MedicalRecord) error {
	if m.RecordType == "" {
		return fmt.Errorf("record_type is required")
	}
	if m.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TypedRecord, int, error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	typed := make([]*TypedRecord, len(items))
	for i, m := range items {
		typed[i] = newTypedRecord(m)
	}
	return typed, total, nil
}
