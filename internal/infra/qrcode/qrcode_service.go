// Package qrcode renders verification QR codes for drug packaging.
package qrcode

import (
	"fmt"
	"strings"

	"meditrack/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// NewQRCodeService creates a new QR code service instance. The payload is
// the public verify URL only; no drug data is embedded, so a reprinted
// label never leaks anything beyond the opaque code.
func NewQRCodeService(size int, errorCorrectionLevel, baseURL string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		baseURL:              strings.TrimRight(baseURL, "/"),
	}
}

// VerificationURL returns the URL embedded in the QR payload.
func (s *qrcodeService) VerificationURL(code string) string {
	return fmt.Sprintf("%s/verify/%s", s.baseURL, code)
}

// GenerateVerificationQR renders the verify URL as a PNG image.
func (s *qrcodeService) GenerateVerificationQR(code string) ([]byte, error) {
	qrCode, err := qrcode.New(s.VerificationURL(code), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}
