package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/healthpass/healthpass/internal/domain/medication"
	"github.com/healthpass/healthpass/internal/domain/prescription"
	"github.com/healthpass/healthpass/internal/domain/profile"
	"github.com/healthpass/healthpass/internal/domain/records"
	"github.com/healthpass/healthpass/internal/platform/qr"
)

var (
	// ErrInvalidInput marks issuance input the caller can correct, as opposed
	// to a store failure.
	ErrInvalidInput = errors.New("invalid share token input")
	// ErrNotFound means the shared patient has no profile row.
	ErrNotFound = errors.New("patient not found")
	// ErrTokenExpired covers every way a token can stop being resolvable:
	// deactivated, outside its validity window, over its usage cap, or
	// missing entirely. Callers get one answer on purpose, so a scanned
	// code leaks nothing about why it stopped working.
	ErrTokenExpired = errors.New("share token is no longer valid")
)

// Fetch interfaces the resolver depends on. The domain repositories satisfy
// them directly.
type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

type RecordReader interface {
	ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*records.MedicalRecord, error)
}

type PrescriptionReader interface {
	ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error)
}

type MedicationReader interface {
	ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error)
}

type Service struct {
	repo          ShareTokenRepository
	profiles      ProfileReader
	records       RecordReader
	prescriptions PrescriptionReader
	medications   MedicationReader
	tokenTTL      time.Duration
	now           func() time.Time
}

func NewService(
	repo ShareTokenRepository,
	profiles ProfileReader,
	recs RecordReader,
	rxs PrescriptionReader,
	meds MedicationReader,
	tokenTTL time.Duration,
) *Service {
	return &Service{
		repo:          repo,
		profiles:      profiles,
		records:       recs,
		prescriptions: rxs,
		medications:   meds,
		tokenTTL:      tokenTTL,
		now:           time.Now,
	}
}

// CreateToken issues a fresh token for the patient. Issuing never touches
// existing tokens, so several can be live for one patient at once. A zero ttl
// falls back to the configured default window.
func (s *Service) CreateToken(ctx context.Context, patientID uuid.UUID, level AccessLevel, ttl time.Duration, maxUsage *int) (*ShareToken, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: access_level must be one of basic, emergency, medical, full", ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = s.tokenTTL
	}
	if maxUsage != nil && *maxUsage <= 0 {
		return nil, fmt.Errorf("%w: max_usage must be positive", ErrInvalidInput)
	}

	now := s.now().UTC()
	t := &ShareToken{
		PatientID:   patientID,
		AccessLevel: level,
		ValidFrom:   now,
		ValidUntil:  now.Add(ttl),
		IsActive:    true,
		UsageCount:  0,
		MaxUsage:    maxUsage,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetToken(ctx context.Context, id uuid.UUID) (*ShareToken, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ShareToken, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) LatestActive(ctx context.Context, patientID uuid.UUID) (*ShareToken, error) {
	return s.repo.LatestActiveByPatient(ctx, patientID)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

// QRCode renders the token's encoded payload as a PNG.
func (s *Service) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, err := Encode(t)
	if err != nil {
		return nil, err
	}
	return qr.PNG(payload, size)
}

// Summary is the access-scoped aggregate a resolved share exposes. Clinical
// fields stay nil for basic-level shares. Partial maps a category name to a
// human-readable error when that category's fetch failed; present categories
// are still returned.
type Summary struct {
	AccessLevel    AccessLevel                  `json:"access_level"`
	Profile        *profile.Profile             `json:"profile"`
	MedicalRecords []*records.MedicalRecord     `json:"medical_records,omitempty"`
	Prescriptions  []*prescription.Prescription `json:"prescriptions,omitempty"`
	Medications    []*medication.Medication     `json:"medications,omitempty"`
	Partial        map[string]string            `json:"partial,omitempty"`
}

// Resolve turns a decoded payload into the scoped aggregate. The stored token
// row is authoritative: the payload only locates it, and liveness plus access
// level come from the database, never from the scanned text. Each successful
// resolve counts against the token's usage cap.
func (s *Service) Resolve(ctx context.Context, p Payload) (*Summary, error) {
	tokenID, err := uuid.Parse(p.TokenID)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	patientID, err := uuid.Parse(p.PatientID)
	if err != nil {
		return nil, ErrMalformedPayload
	}

	t, err := s.repo.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}
	if t.PatientID != patientID {
		return nil, ErrMalformedPayload
	}
	if !t.Live(s.now()) {
		return nil, ErrTokenExpired
	}

	prof, err := s.profiles.GetByID(ctx, t.PatientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	summary := &Summary{AccessLevel: t.AccessLevel, Profile: prof}
	if t.AccessLevel.IncludesClinical() {
		partial := map[string]string{}
		if recs, err := s.records.ListAllByPatient(ctx, t.PatientID); err != nil {
			partial["medical_records"] = err.Error()
		} else {
			summary.MedicalRecords = recs
		}
		if rxs, err := s.prescriptions.ListAllByPatient(ctx, t.PatientID); err != nil {
			partial["prescriptions"] = err.Error()
		} else {
			summary.Prescriptions = rxs
		}
		if meds, err := s.medications.ListAllByPatient(ctx, t.PatientID); err != nil {
			partial["medications"] = err.Error()
		} else {
			summary.Medications = meds
		}
		if len(partial) > 0 {
			summary.Partial = partial
		}
	}

	// Best effort: a failed counter update must not deny an otherwise
	// valid resolve.
	_ = s.repo.IncrementUsage(ctx, t.ID)

	return summary, nil
}

// ResolveText decodes scanned text and resolves it in one step.
func (s *Service) ResolveText(ctx context.Context, text string) (*Summary, error) {
	p, err := Decode(text)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, p)
}
