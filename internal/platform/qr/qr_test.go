package qr

import (
	"bytes"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestPNG(t *testing.T) {
	img, err := PNG(`{"qrId":"abc","patientId":"def"}`, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("expected PNG magic bytes")
	}
}

func TestPNG_DefaultSize(t *testing.T) {
	img, err := PNG("payload", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(img) == 0 {
		t.Error("expected non-empty image")
	}
}

func TestPNG_EmptyContent(t *testing.T) {
	if _, err := PNG("", 256); err == nil {
		t.Error("expected error for empty content")
	}
}
