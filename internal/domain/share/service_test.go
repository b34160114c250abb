package share

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/healthpass/healthpass/internal/domain/medication"
	"github.com/healthpass/healthpass/internal/domain/prescription"
	"github.com/healthpass/healthpass/internal/domain/profile"
	"github.com/healthpass/healthpass/internal/domain/records"
)

type mockTokenRepo struct {
	tokens    map[uuid.UUID]*ShareToken
	createErr error
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[uuid.UUID]*ShareToken)}
}

func (m *mockTokenRepo) Create(ctx context.Context, t *ShareToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	m.tokens[t.ID] = t
	return nil
}

func (m *mockTokenRepo) GetByID(ctx context.Context, id uuid.UUID) (*ShareToken, error) {
	t, ok := m.tokens[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockTokenRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	t, ok := m.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.IsActive = false
	return nil
}

func (m *mockTokenRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	if t, ok := m.tokens[id]; ok {
		t.UsageCount++
	}
	return nil
}

func (m *mockTokenRepo) LatestActiveByPatient(ctx context.Context, patientID uuid.UUID) (*ShareToken, error) {
	var latest *ShareToken
	for _, t := range m.tokens {
		if t.PatientID != patientID || !t.IsActive {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	return latest, nil
}

func (m *mockTokenRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ShareToken, int, error) {
	var items []*ShareToken
	for _, t := range m.tokens {
		if t.PatientID == patientID {
			items = append(items, t)
		}
	}
	return items, len(items), nil
}

// Counting readers back the fetch-gating assertions.

type mockProfileReader struct {
	profiles map[uuid.UUID]*profile.Profile
	calls    int
}

func (m *mockProfileReader) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	m.calls++
	p, ok := m.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockRecordReader struct {
	items []*records.MedicalRecord
	calls int
	err   error
}

func (m *mockRecordReader) ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*records.MedicalRecord, error) {
	m.calls++
	return m.items, m.err
}

type mockPrescriptionReader struct {
	items []*prescription.Prescription
	calls int
	err   error
}

func (m *mockPrescriptionReader) ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error) {
	m.calls++
	return m.items, m.err
}

type mockMedicationReader struct {
	items []*medication.Medication
	calls int
	err   error
}

func (m *mockMedicationReader) ListAllByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	m.calls++
	return m.items, m.err
}

type fixture struct {
	svc     *Service
	repo    *mockTokenRepo
	profs   *mockProfileReader
	recs    *mockRecordReader
	rxs     *mockPrescriptionReader
	meds    *mockMedicationReader
	patient *profile.Profile
}

func newFixture() *fixture {
	p := &profile.Profile{ID: uuid.New(), FirstName: "Jane", LastName: "Doe"}
	f := &fixture{
		repo:    newMockTokenRepo(),
		profs:   &mockProfileReader{profiles: map[uuid.UUID]*profile.Profile{p.ID: p}},
		recs:    &mockRecordReader{items: []*records.MedicalRecord{{ID: uuid.New(), PatientID: p.ID}}},
		rxs:     &mockPrescriptionReader{items: []*prescription.Prescription{{ID: uuid.New(), PatientID: p.ID}}},
		meds:    &mockMedicationReader{items: []*medication.Medication{{ID: uuid.New(), PatientID: p.ID}}},
		patient: p,
	}
	f.svc = NewService(f.repo, f.profs, f.recs, f.rxs, f.meds, 7*24*time.Hour)
	return f
}

func TestCreateToken_Defaults(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	tok, err := f.svc.CreateToken(context.Background(), f.patient.ID, AccessBasic, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tok.IsActive {
		t.Error("expected new token to be active")
	}
	if tok.UsageCount != 0 {
		t.Error("expected zero usage count")
	}
	if !tok.ValidUntil.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("expected valid_until now+7d, got %s", tok.ValidUntil)
	}
}

func TestCreateToken_AllowsMultipleActive(t *testing.T) {
	f := newFixture()
	first, err := f.svc.CreateToken(context.Background(), f.patient.ID, AccessBasic, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.CreateToken(context.Background(), f.patient.ID, AccessFull, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected a fresh row per issue")
	}
	if got, _ := f.repo.GetByID(context.Background(), first.ID); !got.IsActive {
		t.Error("issuing a second token must not deactivate the first")
	}
}

func TestCreateToken_Validation(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.CreateToken(context.Background(), uuid.Nil, AccessBasic, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing patient id, got %v", err)
	}
	if _, err := f.svc.CreateToken(context.Background(), f.patient.ID, "superuser", 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown access level, got %v", err)
	}
	zero := 0
	if _, err := f.svc.CreateToken(context.Background(), f.patient.ID, AccessBasic, 0, &zero); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for non-positive max usage, got %v", err)
	}
}

func TestCreateToken_StoreErrorIsNotInvalidInput(t *testing.T) {
	f := newFixture()
	f.repo.createErr = errors.New("connection reset")
	_, err := f.svc.CreateToken(context.Background(), f.patient.ID, AccessBasic, 0, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("a store failure must not look like caller input")
	}
}

func issueAndDecode(t *testing.T, f *fixture, level AccessLevel) Payload {
	t.Helper()
	tok, err := f.svc.CreateToken(context.Background(), f.patient.ID, level, 0, nil)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	text, err := Encode(tok)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, err := Decode(text)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestResolve_BasicFetchesProfileOnly(t *testing.T) {
	f := newFixture()
	p := issueAndDecode(t, f, AccessBasic)

	summary, err := f.svc.Resolve(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Profile == nil || summary.Profile.ID != f.patient.ID {
		t.Error("expected the patient profile")
	}
	if summary.MedicalRecords != nil || summary.Prescriptions != nil || summary.Medications != nil {
		t.Error("basic share must not expose clinical categories")
	}
	if f.profs.calls != 1 {
		t.Errorf("expected exactly 1 profile fetch, got %d", f.profs.calls)
	}
	if f.recs.calls+f.rxs.calls+f.meds.calls != 0 {
		t.Error("basic share must not touch clinical repositories")
	}
}

func TestResolve_ClinicalFetchesAllFour(t *testing.T) {
	for _, level := range []AccessLevel{AccessEmergency, AccessMedical, AccessFull} {
		f := newFixture()
		p := issueAndDecode(t, f, level)

		summary, err := f.svc.Resolve(context.Background(), p)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", level, err)
		}
		if f.profs.calls != 1 || f.recs.calls != 1 || f.rxs.calls != 1 || f.meds.calls != 1 {
			t.Errorf("%s: expected 4 fetches, got profile=%d records=%d prescriptions=%d medications=%d",
				level, f.profs.calls, f.recs.calls, f.rxs.calls, f.meds.calls)
		}
		if len(summary.MedicalRecords) != 1 || len(summary.Prescriptions) != 1 || len(summary.Medications) != 1 {
			t.Errorf("%s: expected all clinical categories populated", level)
		}
	}
}

func TestResolve_IncrementsUsage(t *testing.T) {
	f := newFixture()
	p := issueAndDecode(t, f, AccessBasic)

	if _, err := f.svc.Resolve(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok, _ := f.repo.GetByID(context.Background(), uuid.MustParse(p.TokenID))
	if tok.UsageCount != 1 {
		t.Errorf("expected usage count 1, got %d", tok.UsageCount)
	}
}

func TestResolve_RejectsDeadTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(tok *ShareToken)
	}{
		{"deactivated", func(tok *ShareToken) { tok.IsActive = false }},
		{"past valid_until", func(tok *ShareToken) { tok.ValidUntil = now.Add(-time.Hour) }},
		{"before valid_from", func(tok *ShareToken) { tok.ValidFrom = now.Add(time.Hour) }},
		{"over usage cap", func(tok *ShareToken) {
			one := 1
			tok.MaxUsage = &one
			tok.UsageCount = 1
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.svc.now = func() time.Time { return now }
			p := issueAndDecode(t, f, AccessFull)

			tok, _ := f.repo.GetByID(context.Background(), uuid.MustParse(p.TokenID))
			tc.mutate(tok)

			if _, err := f.svc.Resolve(context.Background(), p); !errors.Is(err, ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
			if f.profs.calls != 0 {
				t.Error("dead token must not reach the profile store")
			}
		})
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	f := newFixture()
	p := Payload{
		TokenID:     uuid.New().String(),
		PatientID:   f.patient.ID.String(),
		AccessLevel: AccessBasic,
		ValidUntil:  time.Now().Add(time.Hour),
	}
	if _, err := f.svc.Resolve(context.Background(), p); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired for unknown token, got %v", err)
	}
}

func TestResolve_PatientMismatch(t *testing.T) {
	f := newFixture()
	p := issueAndDecode(t, f, AccessBasic)
	p.PatientID = uuid.New().String()

	if _, err := f.svc.Resolve(context.Background(), p); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload for tampered patient id, got %v", err)
	}
}

func TestResolve_ProfileMissing(t *testing.T) {
	f := newFixture()
	p := issueAndDecode(t, f, AccessBasic)
	delete(f.profs.profiles, f.patient.ID)

	if _, err := f.svc.Resolve(context.Background(), p); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_PartialDegradation(t *testing.T) {
	f := newFixture()
	f.rxs.err = errors.New("prescriptions store down")
	p := issueAndDecode(t, f, AccessMedical)

	summary, err := f.svc.Resolve(context.Background(), p)
	if err != nil {
		t.Fatalf("expected graceful degradation, got %v", err)
	}
	if summary.Prescriptions != nil {
		t.Error("failed category must stay nil")
	}
	if summary.Partial["prescriptions"] == "" {
		t.Error("expected a per-category error flag for prescriptions")
	}
	if len(summary.MedicalRecords) != 1 || len(summary.Medications) != 1 {
		t.Error("healthy categories must still be returned")
	}
}

func TestEndToEnd_BasicShare(t *testing.T) {
	f := newFixture()

	tok, err := f.svc.CreateToken(context.Background(), f.patient.ID, AccessBasic, 7*24*time.Hour, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	text, err := Encode(tok)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	summary, err := f.svc.ResolveText(context.Background(), text)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if summary.Profile == nil || summary.Profile.ID != f.patient.ID {
		t.Error("expected only the profile row for the shared patient")
	}
	if summary.MedicalRecords != nil || summary.Prescriptions != nil || summary.Medications != nil {
		t.Error("basic share leaked clinical data")
	}
}
