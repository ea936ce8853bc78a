package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	// Register decoders for the upload formats the scan endpoint accepts.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// maxDimension caps either side of the canonical OCR input. Larger images
// are fitted inside the cap preserving aspect ratio; smaller images are
// never upscaled.
const maxDimension = 2000

// Preprocessor normalizes an arbitrary screenshot into the canonical form
// the OCR engine reads best: bounded grayscale PNG with stretched contrast
// and sharpened text.
type Preprocessor struct{}

// NewPreprocessor creates a Preprocessor.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Process decodes src, applies the normalization pipeline and re-encodes
// as PNG.
func (p *Preprocessor) Process(src []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("image preprocessing failed: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	gray := imaging.Grayscale(img)
	gray = stretchContrast(gray)
	gray = imaging.Sharpen(gray, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("image preprocessing failed: %w", err)
	}
	return buf.Bytes(), nil
}

// stretchContrast rescales pixel luminance so the darkest pixel maps to 0
// and the brightest to 255. Flat images pass through untouched.
func stretchContrast(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(img.Pix); i += 4 {
		// Grayscale input: R, G and B are identical.
		v := img.Pix[i]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return img
	}

	span := float64(hi - lo)
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		v := uint8(float64(out.Pix[i]-lo) / span * 255)
		out.Pix[i] = v
		out.Pix[i+1] = v
		out.Pix[i+2] = v
	}
	return out
}
