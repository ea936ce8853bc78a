package ocr

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// ErrOCRUnavailable reports that the OCR engine itself failed. Callers must
// surface this distinctly from an all-null parse: the latter is a valid
// result, the former means the user should fall back to manual entry.
var ErrOCRUnavailable = errors.New("ocr engine unavailable")

// TextExtractor converts a preprocessed image file into raw text.
type TextExtractor interface {
	ExtractText(imagePath string) (string, error)
}

// TesseractExtractor runs the Tesseract engine via gosseract.
type TesseractExtractor struct {
	language string
}

var _ TextExtractor = (*TesseractExtractor)(nil)

// NewTesseractExtractor creates an extractor for the given language
// ("eng" when empty).
func NewTesseractExtractor(language string) *TesseractExtractor {
	if language == "" {
		language = "eng"
	}
	return &TesseractExtractor{language: language}
}

// ExtractText recognizes the text in the image at imagePath. A fresh client
// per call keeps the extractor safe for concurrent scans.
func (e *TesseractExtractor) ExtractText(imagePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	return text, nil
}

// probePNG is a 1x1 transparent PNG used to verify the engine can run.
const probePNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

// Health checks that the Tesseract engine is operational by recognizing a
// tiny in-memory image.
func (e *TesseractExtractor) Health() error {
	probe, err := base64.StdEncoding.DecodeString(probePNG)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(probe); err != nil {
		return fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	if _, err := client.Text(); err != nil {
		return fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	return nil
}
