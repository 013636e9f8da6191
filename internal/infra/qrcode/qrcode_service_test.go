package qrcode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationURL(t *testing.T) {
	svc := NewQRCodeService(256, "M", "https://meditrack.example.com/")

	url := svc.VerificationURL("MED-1735600000000-a1b2c3d4e")
	assert.Equal(t, "https://meditrack.example.com/verify/MED-1735600000000-a1b2c3d4e", url)
}

func TestGenerateVerificationQR(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewQRCodeService(tt.size, tt.errorCorrectionLevel, "https://meditrack.example.com")

			png, err := svc.GenerateVerificationQR("MED-1735600000000-a1b2c3d4e")
			require.NoError(t, err)
			assert.NotEmpty(t, png)
			// PNG magic bytes.
			assert.True(t, bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}))
		})
	}
}
