package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const pngDataURLPrefix = "data:image/png;base64,"

// EncodeQRDataURL renders content as a 256px PNG QR code and returns it as a
// data URL ready to embed in an <img> tag.
func EncodeQRDataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// DecodePNGDataURL is the inverse of EncodeQRDataURL.
func DecodePNGDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, pngDataURLPrefix) {
		return nil, errors.New("qr decode: not a png data url")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, pngDataURLPrefix))
}
