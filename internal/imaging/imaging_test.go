// ABOUTME: Tests for the profile picture pipeline
// ABOUTME: Covers size boundary, MIME sniffing and downscale geometry

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG renders a solid test image; PNG keeps exact dimensions.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate_SizeBoundary(t *testing.T) {
	// A real PNG header followed by padding keeps the sniffer happy while
	// letting us hit the cap exactly.
	header := encodePNG(t, 4, 4)
	atCap := append(header, bytes.Repeat([]byte{0}, DefaultMaxUploadBytes-len(header))...)
	require.Len(t, atCap, DefaultMaxUploadBytes)

	assert.NoError(t, Validate(atCap, DefaultMaxUploadBytes), "exactly the cap must pass")
	assert.ErrorIs(t, Validate(append(atCap, 0), DefaultMaxUploadBytes), ErrTooLarge, "one byte over must fail")
}

func TestValidate_RespectsConfiguredCap(t *testing.T) {
	header := encodePNG(t, 4, 4)
	payload := append(header, bytes.Repeat([]byte{0}, 2<<20-len(header))...)

	assert.ErrorIs(t, Validate(payload, 1<<20), ErrTooLarge, "a lowered cap must reject what the default allows")
	assert.NoError(t, Validate(payload, DefaultMaxUploadBytes))
	assert.NoError(t, Validate(payload, 0), "non-positive cap falls back to the default")
}

func TestValidate_RejectsNonImage(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("not a picture at all, just words")},
		{"pdf header", []byte("%PDF-1.4 something")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tc.data, DefaultMaxUploadBytes), ErrNotImage)
		})
	}
}

func TestValidate_AcceptsImage(t *testing.T) {
	assert.NoError(t, Validate(encodePNG(t, 10, 10), DefaultMaxUploadBytes))
}

func TestCompress_DownscalesLandscape(t *testing.T) {
	out, err := Compress(encodePNG(t, 2400, 1200), DefaultMaxUploadBytes)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, MaxDimension, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy(), "aspect ratio must be preserved")
}

func TestCompress_DownscalesPortrait(t *testing.T) {
	out, err := Compress(encodePNG(t, 600, 1800), DefaultMaxUploadBytes)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, MaxDimension, img.Bounds().Dy())
}

func TestCompress_SmallImageKeepsDimensions(t *testing.T) {
	out, err := Compress(encodePNG(t, 320, 240), DefaultMaxUploadBytes)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format, "output is always JPEG")
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
	assert.LessOrEqual(t, len(out), DefaultMaxUploadBytes)
}

func TestCompress_RejectsGarbage(t *testing.T) {
	_, err := Compress([]byte("garbage"), DefaultMaxUploadBytes)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestPrepare_ValidatesFirst(t *testing.T) {
	_, err := Prepare([]byte("plain text payload"), DefaultMaxUploadBytes)
	assert.ErrorIs(t, err, ErrNotImage)
}
