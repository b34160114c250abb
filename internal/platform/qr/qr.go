// Package qr renders share payloads as scannable QR images.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the pixel width of a generated code when none is configured.
const DefaultSize = 256

// PNG encodes the given text as a QR code PNG. The highest recovery level is
// used so the code survives screen glare and partial occlusion on a phone
// camera scan.
func PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(content, qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}
	return png, nil
}
