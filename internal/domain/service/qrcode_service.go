package service

// QRCodeService defines the interface for verification QR code generation.
type QRCodeService interface {
	// GenerateVerificationQR renders the public verify URL for the given
	// verification code as a PNG image.
	GenerateVerificationQR(code string) ([]byte, error)

	// VerificationURL returns the URL embedded in the QR payload,
	// {baseURL}/verify/{code}. The code is the only information encoded.
	VerificationURL(code string) string
}
