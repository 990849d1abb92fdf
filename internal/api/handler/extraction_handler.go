package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/visai-labs/extraction-be/internal/api/dto"
	"github.com/visai-labs/extraction-be/internal/extraction/domain"
	"github.com/visai-labs/extraction-be/internal/verify"
)

// Upload handles POST /api/upload
// Accepts a scanned document image, stores the raw file, and schedules the
// extraction pipeline. Responds immediately with the processing placeholder.
func (h *ExtractionHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Error("Missing upload file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing file",
		})
		return
	}
	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing filename",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read upload",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read upload",
		})
		return
	}

	// Store the raw file first; the stored path becomes the extraction's
	// opaque source reference. The pipeline itself only sees the bytes.
	sourcePath := filepath.Join(h.uploadDir, uuid.New().String()+"_"+filepath.Base(fileHeader.Filename))
	if err := os.WriteFile(sourcePath, content, 0o644); err != nil {
		h.logger.Error("Failed to store upload",
			slog.String("path", sourcePath),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store upload",
		})
		return
	}

	e, err := h.orchestrator.Submit(c.Request.Context(), content, sourcePath)
	if err != nil {
		h.logger.Error("Failed to accept extraction", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to accept document",
		})
		return
	}

	c.JSON(http.StatusOK, dto.FromExtraction(e))
}

// Result handles GET /api/result/:extraction_id
// Polls the current state of an extraction, serving from the cache with a
// durable-store fallback.
func (h *ExtractionHandler) Result(c *gin.Context) {
	extractionID := c.Param("extraction_id")

	e, err := h.orchestrator.Get(c.Request.Context(), extractionID)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Unknown extraction id",
			})
			return
		}
		h.logger.Error("Failed to get extraction",
			slog.String("extraction_id", extractionID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get extraction",
		})
		return
	}

	c.JSON(http.StatusOK, dto.FromExtraction(e))
}

// Verify handles POST /api/verify
// Runs the stateless field-map validation. No persistence side effect.
func (h *ExtractionHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid verify request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	c.JSON(http.StatusOK, verify.Validate(domain.FieldMap(req.Data)))
}

// Submit handles POST /api/submit
// Records caller-verified fields and moves the extraction to submitted.
func (h *ExtractionHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid submit request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	e, err := h.orchestrator.SubmitVerified(c.Request.Context(), req.ExtractionID, domain.FieldMap(req.Data))
	if err != nil {
		h.logger.Error("Failed to submit verified fields",
			slog.String("extraction_id", req.ExtractionID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to submit verified fields",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SubmitResponse{
		Status:       e.Status,
		ExtractionID: e.ID,
	})
}
