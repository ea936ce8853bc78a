package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trade-journal-go/internal/ocr"
)

// ScanTrade runs an uploaded broker screenshot through the OCR pipeline
// and returns whatever trade fields could be recognized.
func (h *Handler) ScanTrade(c *gin.Context) {
	file, header, err := c.Request.FormFile("screenshot")
	if err != nil {
		fail(c, http.StatusBadRequest, "No screenshot uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		fail(c, http.StatusBadRequest, "Image exceeds the maximum upload size")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		h.logger.Error("Failed to read uploaded screenshot", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if int64(len(data)) > h.maxUpload {
		fail(c, http.StatusBadRequest, "Image exceeds the maximum upload size")
		return
	}

	result, err := h.pipeline.Scan(c.Request.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrUnsupportedFormat):
			fail(c, http.StatusBadRequest, "Unsupported image format. Use PNG, JPEG or WebP")
		case errors.Is(err, ocr.ErrImageTooLarge):
			fail(c, http.StatusBadRequest, "Image exceeds the maximum upload size")
		case errors.Is(err, ocr.ErrOCRUnavailable):
			h.logger.Error("OCR engine unavailable", zap.Error(err))
			fail(c, http.StatusServiceUnavailable, "OCR is temporarily unavailable. Please enter the trade manually")
		default:
			h.logger.Error("Screenshot scan failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Failed to process screenshot")
		}
		return
	}

	ok(c, http.StatusOK, gin.H{"data": gin.H{
		"extracted": result.Extracted,
		"metadata":  result.Metadata,
	}})
}

// OCRHealth reports whether the OCR engine can currently serve scans.
func (h *Handler) OCRHealth(c *gin.Context) {
	if err := h.ocrHealth(); err != nil {
		h.logger.Warn("OCR health probe failed", zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "OCR engine is not available")
		return
	}
	ok(c, http.StatusOK, gin.H{"data": gin.H{"status": "ok"}})
}
