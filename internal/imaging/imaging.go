// ABOUTME: Profile picture validation and client-side JPEG downscaling
// ABOUTME: Reduces uploads before they reach the multipart endpoint

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// DefaultMaxUploadBytes is the upload cap used when no override is
	// configured.
	DefaultMaxUploadBytes = 3 << 20
	// MaxDimension bounds the longest side after downscaling.
	MaxDimension = 1200

	primaryQuality  = 70
	fallbackQuality = 40
)

var (
	ErrNotImage = errors.New("file must be an image")
	ErrTooLarge = errors.New("image is too large")
)

// Validate sniffs the content type and checks the size cap. Exactly
// maxBytes passes; one byte more does not. A non-positive maxBytes falls
// back to DefaultMaxUploadBytes.
func Validate(data []byte, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if len(data) == 0 {
		return ErrNotImage
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return ErrNotImage
	}
	if len(data) > maxBytes {
		return fmt.Errorf("%w (max %dMB)", ErrTooLarge, maxBytes>>20)
	}
	return nil
}

// Compress decodes a JPEG, PNG or GIF, downscales it so the longest side
// is at most MaxDimension preserving aspect ratio, and re-encodes as JPEG
// at quality 70. If the result still exceeds maxBytes it retries once at
// quality 40 before giving up.
func Compress(data []byte, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotImage
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > MaxDimension || height > MaxDimension {
		if width >= height {
			height = height * MaxDimension / width
			width = MaxDimension
		} else {
			width = width * MaxDimension / height
			height = MaxDimension
		}
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	encoded, err := encodeJPEG(src, primaryQuality)
	if err != nil {
		return nil, err
	}
	if len(encoded) > maxBytes {
		encoded, err = encodeJPEG(src, fallbackQuality)
		if err != nil {
			return nil, err
		}
	}
	if len(encoded) > maxBytes {
		return nil, fmt.Errorf("%w (max %dMB)", ErrTooLarge, maxBytes>>20)
	}
	return encoded, nil
}

// Prepare validates then compresses in one step, the order the upload
// flow uses.
func Prepare(data []byte, maxBytes int) ([]byte, error) {
	if err := Validate(data, maxBytes); err != nil {
		return nil, err
	}
	return Compress(data, maxBytes)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
