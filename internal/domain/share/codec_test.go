package share

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, level := range []AccessLevel{AccessBasic, AccessEmergency, AccessMedical, AccessFull} {
		tok := &ShareToken{
			ID:          uuid.New(),
			PatientID:   uuid.New(),
			AccessLevel: level,
			ValidUntil:  time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC),
		}
		text, err := Encode(tok)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		p, err := Decode(text)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if p.TokenID != tok.ID.String() {
			t.Errorf("token id round trip failed: %s != %s", p.TokenID, tok.ID)
		}
		if p.PatientID != tok.PatientID.String() {
			t.Errorf("patient id round trip failed: %s != %s", p.PatientID, tok.PatientID)
		}
		if p.AccessLevel != level {
			t.Errorf("access level round trip failed: %s != %s", p.AccessLevel, level)
		}
		if !p.ValidUntil.Equal(tok.ValidUntil) {
			t.Errorf("valid until round trip failed: %s != %s", p.ValidUntil, tok.ValidUntil)
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	tok := &ShareToken{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		AccessLevel: AccessBasic,
		ValidUntil:  time.Now().Add(7 * 24 * time.Hour),
	}
	a, _ := Encode(tok)
	b, _ := Encode(tok)
	if a != b {
		t.Error("expected identical tokens to encode identically")
	}
}

func TestDecode_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"not json at all",
		"{",
		"[1,2,3]",
		`"just a string"`,
		"42",
		"null",
		`{}`,
		`{"qrId":"x"}`,
		`{"qrId":"a","patientId":"b","accessLevel":"superuser","validUntil":"2026-09-07T00:00:00Z"}`,
		`{"qrId":"a","patientId":"b","accessLevel":"basic"}`,
		`{"qrId":"a","patientId":"","accessLevel":"basic","validUntil":"2026-09-07T00:00:00Z"}`,
		strings.Repeat("x", 10000),
	}
	for _, in := range inputs {
		if _, err := Decode(in); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("Decode(%q) = %v, want ErrMalformedPayload", in, err)
		}
	}
}

func TestDecode_ToleratesMissingVersion(t *testing.T) {
	text := `{"qrId":"` + uuid.New().String() + `","patientId":"` + uuid.New().String() +
		`","accessLevel":"medical","validUntil":"2026-09-07T00:00:00Z"}`
	p, err := Decode(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Version != 0 {
		t.Errorf("expected zero version for unversioned payload, got %d", p.Version)
	}
	if p.AccessLevel != AccessMedical {
		t.Errorf("expected medical access level, got %s", p.AccessLevel)
	}
}

func TestAccessLevel_IncludesClinical(t *testing.T) {
	if AccessBasic.IncludesClinical() {
		t.Error("basic must not include clinical categories")
	}
	for _, level := range []AccessLevel{AccessEmergency, AccessMedical, AccessFull} {
		if !level.IncludesClinical() {
			t.Errorf("%s must include clinical categories", level)
		}
	}
}
