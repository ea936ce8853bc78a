package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat rejects uploads that are not PNG/JPEG/WEBP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrImageTooLarge rejects uploads over the configured byte cap.
	ErrImageTooLarge = errors.New("image exceeds maximum size")
)

var allowedMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

// ScanMetadata describes a scan for audit and debugging.
type ScanMetadata struct {
	OCRTextLength   int    `json:"ocrTextLength"`
	FieldsExtracted int    `json:"fieldsExtracted"`
	RawTextPreview  string `json:"rawTextPreview"`
}

// ScanResult is the outcome of one screenshot scan.
type ScanResult struct {
	Extracted ExtractedTradeFields `json:"extracted"`
	Metadata  ScanMetadata         `json:"metadata"`
}

// Pipeline chains upload validation, preprocessing, OCR and field parsing.
// Each stage depends on the previous one's output, so they run strictly in
// sequence; the caller owns timeout and cancellation policy via ctx.
type Pipeline struct {
	pre       *Preprocessor
	extractor TextExtractor
	tempDir   string
	maxBytes  int64
	logger    *zap.Logger
}

// NewPipeline creates a scan pipeline writing temporary artifacts under
// tempDir.
func NewPipeline(extractor TextExtractor, tempDir string, maxBytes int64, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		pre:       NewPreprocessor(),
		extractor: extractor,
		tempDir:   tempDir,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Scan validates the upload, preprocesses it, runs OCR and parses the
// recognized text. Validation happens before any temporary file is
// written, and the temp artifact is removed on every exit path.
func (p *Pipeline) Scan(ctx context.Context, data []byte, mimeType string) (*ScanResult, error) {
	if !allowedMimeTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}

	processed, err := p.pre.Process(data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	tempPath := filepath.Join(p.tempDir, fmt.Sprintf("scan-%s.png", uuid.NewString()))
	if err := os.WriteFile(tempPath, processed, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			p.logger.Warn("Failed to remove temp scan image", zap.String("path", tempPath), zap.Error(err))
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := p.extractor.ExtractText(tempPath)
	if err != nil {
		return nil, err
	}

	fields := ParseTradeFields(text)
	p.logger.Debug("Screenshot scanned",
		zap.Int("text_length", len(text)),
		zap.Int("fields_extracted", fields.FieldCount()),
	)

	return &ScanResult{
		Extracted: fields,
		Metadata: ScanMetadata{
			OCRTextLength:   len(text),
			FieldsExtracted: fields.FieldCount(),
			RawTextPreview:  preview(text, 500),
		},
	}, nil
}

// preview truncates to at most limit bytes without splitting a rune, so
// the metadata stays valid UTF-8 even when OCR output carries currency
// symbols near the boundary.
func preview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
