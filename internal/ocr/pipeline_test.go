package ocr

import (
	"context"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeExtractor stands in for the Tesseract engine.
type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractText(imagePath string) (string, error) {
	f.calls++
	if _, err := os.Stat(imagePath); err != nil {
		return "", err
	}
	return f.text, f.err
}

func newTestPipeline(t *testing.T, extractor TextExtractor) *Pipeline {
	t.Helper()
	return NewPipeline(extractor, t.TempDir(), 10*1024*1024, zap.NewNop())
}

func TestPipelineScan(t *testing.T) {
	fake := &fakeExtractor{text: "NSE: RELIANCE BUY Qty: 100 Entry Price: 2450.50"}
	pipeline := newTestPipeline(t, fake)

	result, err := pipeline.Scan(context.Background(), encodePNG(t, 640, 480), "image/png")

	assert.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	if assert.NotNil(t, result.Extracted.Symbol) {
		assert.Equal(t, "RELIANCE", *result.Extracted.Symbol)
	}
	assert.Equal(t, 4, result.Metadata.FieldsExtracted)
	assert.Equal(t, len(fake.text), result.Metadata.OCRTextLength)
	assert.Equal(t, fake.text, result.Metadata.RawTextPreview)
}

func TestPipelineScanRejectsBeforeAnyWork(t *testing.T) {
	testCases := []struct {
		name        string
		data        []byte
		mimeType    string
		maxBytes    int64
		expectedErr error
	}{
		{
			name:        "unsupported format",
			data:        []byte("gif bytes"),
			mimeType:    "image/gif",
			maxBytes:    1024,
			expectedErr: ErrUnsupportedFormat,
		},
		{
			name:        "oversized upload",
			data:        make([]byte, 2048),
			mimeType:    "image/png",
			maxBytes:    1024,
			expectedErr: ErrImageTooLarge,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeExtractor{}
			pipeline := NewPipeline(fake, t.TempDir(), tc.maxBytes, zap.NewNop())

			_, err := pipeline.Scan(context.Background(), tc.data, tc.mimeType)

			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Equal(t, 0, fake.calls, "validation failures must not reach OCR")
		})
	}
}

func TestPipelineScanCleansUpTempFiles(t *testing.T) {
	tempDir := t.TempDir()
	fake := &fakeExtractor{text: "BUY"}
	pipeline := NewPipeline(fake, tempDir, 10*1024*1024, zap.NewNop())

	_, err := pipeline.Scan(context.Background(), encodePNG(t, 64, 64), "image/png")
	assert.NoError(t, err)

	entries, err := os.ReadDir(tempDir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "temp artifact removed on success")
}

func TestPipelineScanCleansUpOnOCRFailure(t *testing.T) {
	tempDir := t.TempDir()
	fake := &fakeExtractor{err: ErrOCRUnavailable}
	pipeline := NewPipeline(fake, tempDir, 10*1024*1024, zap.NewNop())

	_, err := pipeline.Scan(context.Background(), encodePNG(t, 64, 64), "image/png")

	assert.ErrorIs(t, err, ErrOCRUnavailable)
	entries, readErr := os.ReadDir(tempDir)
	assert.NoError(t, readErr)
	assert.Empty(t, entries, "temp artifact removed on failure")
}

func TestPipelineScanRespectsCancellation(t *testing.T) {
	fake := &fakeExtractor{text: "BUY"}
	pipeline := newTestPipeline(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Scan(ctx, encodePNG(t, 64, 64), "image/png")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fake.calls)
}

func TestPipelineScanPreviewKeepsRunesIntact(t *testing.T) {
	// 200 rupee signs are 600 bytes; byte 500 falls inside a rune.
	fake := &fakeExtractor{text: strings.Repeat("₹", 200)}
	pipeline := newTestPipeline(t, fake)

	result, err := pipeline.Scan(context.Background(), encodePNG(t, 64, 64), "image/png")

	assert.NoError(t, err)
	previewText := result.Metadata.RawTextPreview
	assert.True(t, utf8.ValidString(previewText), "preview must not split a rune")
	assert.LessOrEqual(t, len(previewText), 500)
	assert.Equal(t, strings.Repeat("₹", 166), previewText)
}

func TestPipelineScanAllNullParseIsSuccess(t *testing.T) {
	fake := &fakeExtractor{text: strings.Repeat("nothing tradeable here. ", 30)}
	pipeline := newTestPipeline(t, fake)

	result, err := pipeline.Scan(context.Background(), encodePNG(t, 64, 64), "image/png")

	assert.NoError(t, err, "no fields found is a valid outcome, not an error")
	assert.Equal(t, 0, result.Metadata.FieldsExtracted)
	assert.Len(t, result.Metadata.RawTextPreview, 500)
}
