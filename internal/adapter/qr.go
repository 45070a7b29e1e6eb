package adapter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"
)

// DefaultQRSize is the edge length of rendered QR codes in pixels.
const DefaultQRSize = 256

// QRRenderer draws otpauth:// URIs as PNG images.
type QRRenderer struct {
	size int
}

func NewQRRenderer(size int) *QRRenderer {
	if size <= 0 {
		size = DefaultQRSize
	}
	return &QRRenderer{size: size}
}

// Render returns the PNG encoding of uri as a QR code.
func (r *QRRenderer) Render(uri string) ([]byte, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if key.Type() != "totp" || key.Secret() == "" {
		return nil, ErrInvalidURI
	}

	img, err := key.Image(r.size, r.size)
	if err != nil {
		return nil, fmt.Errorf("error drawing QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("error encoding QR code: %w", err)
	}

	return buf.Bytes(), nil
}

// DataURI embeds a PNG image in a data: URI.
func DataURI(image []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
}
