package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

// encodePNG renders a width x height gradient so the contrast stretch has
// something to work with.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(64 + (x*128)/max(width, 1))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessorCapsOversizedImages(t *testing.T) {
	src := encodePNG(t, 3000, 600)

	out, err := NewPreprocessor().Process(src)

	assert.NoError(t, err)
	decoded, format, err := image.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 2000, decoded.Bounds().Dx(), "fit inside 2000px cap")
	assert.Equal(t, 400, decoded.Bounds().Dy(), "aspect ratio preserved")
}

func TestPreprocessorNeverUpscales(t *testing.T) {
	src := encodePNG(t, 320, 200)

	out, err := NewPreprocessor().Process(src)

	assert.NoError(t, err)
	decoded, _, err := image.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
	assert.Equal(t, 320, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestPreprocessorProducesNormalizedGrayscale(t *testing.T) {
	src := encodePNG(t, 100, 40)

	out, err := NewPreprocessor().Process(src)

	assert.NoError(t, err)
	decoded, _, err := image.Decode(bytes.NewReader(out))
	assert.NoError(t, err)

	lo, hi := uint32(1<<16), uint32(0)
	bounds := decoded.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := decoded.At(x, y).RGBA()
			assert.Equal(t, r, g, "grayscale output")
			assert.Equal(t, g, b, "grayscale output")
			if r < lo {
				lo = r
			}
			if r > hi {
				hi = r
			}
		}
	}
	// The 64..192 input gradient should be stretched toward full range.
	assert.Less(t, lo, uint32(16<<8))
	assert.Greater(t, hi, uint32(239<<8))
}

func TestPreprocessorRejectsGarbage(t *testing.T) {
	_, err := NewPreprocessor().Process([]byte("not an image"))

	assert.Error(t, err)
}
