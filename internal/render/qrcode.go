package render

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// GenerateQRCodePNG returns a PNG-encoded QR code for the given payload.
func GenerateQRCodePNG(payload string, sizePx int) ([]byte, error) {
	if payload == "" {
		return nil, errors.New("empty qr payload")
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qrCode.PNG(sizePx)
}
