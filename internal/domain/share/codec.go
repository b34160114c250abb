package share

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformedPayload marks scanned text that does not parse as a share
// payload. Scanning UIs surface it and keep the camera running.
var ErrMalformedPayload = errors.New("malformed share payload")

// payloadVersion is written on encode. Decoders accept payloads without the
// field so codes issued before versioning still scan.
const payloadVersion = 1

// Payload is the shareable subset of a token, exactly what gets embedded in
// the QR image. It carries no signature; the stored token row stays
// authoritative and is re-checked on every resolve.
type Payload struct {
	Version     int         `json:"v,omitempty"`
	TokenID     string      `json:"qrId"`
	PatientID   string      `json:"patientId"`
	AccessLevel AccessLevel `json:"accessLevel"`
	ValidUntil  time.Time   `json:"validUntil"`
}

// Encode serializes the token's shareable fields as compact JSON. The output
// is deterministic for a given token, so a stored row always reproduces the
// exact payload that was printed into its QR image.
func Encode(t *ShareToken) (string, error) {
	p := Payload{
		Version:     payloadVersion,
		TokenID:     t.ID.String(),
		PatientID:   t.PatientID.String(),
		AccessLevel: t.AccessLevel,
		ValidUntil:  t.ValidUntil.UTC(),
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses scanned text back into a Payload. Any structural problem,
// including well-formed JSON missing required fields, comes back as
// ErrMalformedPayload rather than a panic or a raw unmarshal error.
func Decode(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return Payload{}, ErrMalformedPayload
	}
	if p.TokenID == "" || p.PatientID == "" {
		return Payload{}, ErrMalformedPayload
	}
	if !p.AccessLevel.Valid() {
		return Payload{}, ErrMalformedPayload
	}
	if p.ValidUntil.IsZero() {
		return Payload{}, ErrMalformedPayload
	}
	return p, nil
}
