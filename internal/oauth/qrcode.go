package oauth

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// RenderQR renders content as a terminal QR code made of half block characters.
// Inverted colours read better on a dark terminal and on e-ink alike.
func RenderQR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}
	return qr.ToSmallString(true), nil
}
