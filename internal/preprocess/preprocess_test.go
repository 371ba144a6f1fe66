package preprocess

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y += 10 {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRun_OversizedPayloadFailsFast(t *testing.T) {
	_, _, err := Run("aGVsbG8=", "image/png", 4)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestRun_InvalidBase64IsTerminal(t *testing.T) {
	_, _, err := Run("!!! not base64 !!!", "image/png", 1000)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestRun_AcceptsUnpaddedBase64(t *testing.T) {
	payload := base64.RawStdEncoding.EncodeToString([]byte("%PDF-1.4 fake"))
	data, mime, err := Run(payload, "application/pdf", 1000)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
	assert.Equal(t, "application/pdf", mime)
}

func TestNormalize_LargeImageIsDownscaledToJPEG(t *testing.T) {
	original := pngBytes(t, 2000, 2000)

	data, mime := Normalize(original, "image/png")
	assert.Equal(t, "image/jpeg", mime)
	assert.NotEqual(t, original, data)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), MaxDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), MaxDimension)
}

func TestNormalize_PreservesAspectRatio(t *testing.T) {
	data, mime := Normalize(pngBytes(t, 2048, 1024), "image/png")
	require.Equal(t, "image/jpeg", mime)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
}

func TestNormalize_SmallImagePassesThroughUnchanged(t *testing.T) {
	original := pngBytes(t, 100, 80)

	data, mime := Normalize(original, "image/png")
	assert.Equal(t, original, data)
	assert.Equal(t, "image/png", mime)
}

func TestNormalize_NonRasterPassesThrough(t *testing.T) {
	original := []byte("%PDF-1.4 definitely not an image")

	data, mime := Normalize(original, "application/pdf")
	assert.Equal(t, original, data)
	assert.Equal(t, "application/pdf", mime)
}

func TestNormalize_UndecodableImageFallsBack(t *testing.T) {
	original := []byte("claims to be an image but is not")

	data, mime := Normalize(original, "image/jpeg")
	assert.Equal(t, original, data)
	assert.Equal(t, "image/jpeg", mime)
}

func TestRun_EndToEndDownscale(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(pngBytes(t, 2000, 1500))

	data, mime, err := Run(payload, "image/png", len(payload)+1)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), MaxDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), MaxDimension)
}
