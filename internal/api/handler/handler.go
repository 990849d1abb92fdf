package handler

import (
	"log/slog"

	"github.com/visai-labs/extraction-be/internal/extraction"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Orchestrator *extraction.Orchestrator
	UploadDir    string
}

// ExtractionHandler handles document extraction HTTP requests
type ExtractionHandler struct {
	logger       *slog.Logger
	orchestrator *extraction.Orchestrator
	uploadDir    string
}

// NewExtractionHandler creates a new ExtractionHandler instance
func NewExtractionHandler(deps *Dependencies) *ExtractionHandler {
	return &ExtractionHandler{
		logger:       deps.Logger,
		orchestrator: deps.Orchestrator,
		uploadDir:    deps.UploadDir,
	}
}
