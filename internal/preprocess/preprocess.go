// Package preprocess normalizes an encoded document payload before it is
// sent to the model: it enforces the payload cap, decodes the base64 body,
// and downscales oversized raster images to keep upstream costs bounded.
package preprocess

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxDimension bounds both sides of a raster image sent upstream.
const MaxDimension = 1024

// JPEGQuality is the re-encode quality for downscaled images.
const JPEGQuality = 65

// ErrPayloadTooLarge is returned when the encoded payload exceeds the cap.
var ErrPayloadTooLarge = errors.New("file too large")

// ErrInvalidPayload is returned when the payload is not valid base64.
var ErrInvalidPayload = errors.New("invalid document data")

// Run validates and decodes the base64 payload, then normalizes it.
// maxEncodedBytes caps the encoded length; decode failures are terminal.
func Run(fileData, mimeType string, maxEncodedBytes int) ([]byte, string, error) {
	if len(fileData) > maxEncodedBytes {
		return nil, "", ErrPayloadTooLarge
	}

	data, err := decodeBase64(fileData)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	data, mimeType = Normalize(data, mimeType)
	return data, mimeType, nil
}

// decodeBase64 accepts both padded and unpadded standard encodings.
func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// Normalize downscales a raster image so neither dimension exceeds
// MaxDimension, re-encoding it as JPEG. Non-raster payloads (PDF) pass
// through, as do images already within bounds. Resizing is a best-effort
// size optimization: any failure falls back to the original bytes and MIME.
func Normalize(data []byte, mimeType string) ([]byte, string) {
	if !strings.HasPrefix(mimeType, "image/") {
		return data, mimeType
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType
	}

	bounds := img.Bounds()
	if bounds.Dx() <= MaxDimension && bounds.Dy() <= MaxDimension {
		return data, mimeType
	}

	resized := imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return data, mimeType
	}

	return buf.Bytes(), "image/jpeg"
}
