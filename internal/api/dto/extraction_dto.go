package dto

import "github.com/visai-labs/extraction-be/internal/extraction/domain"

// ExtractionResponse is the poll-result shape. RawText and Data stay null
// until the pipeline completes; Error carries the failure cause, when known,
// for extractions in the error status.
type ExtractionResponse struct {
	ExtractionID string          `json:"extraction_id"`
	Status       string          `json:"status"`
	RawText      *string         `json:"raw_text"`
	Data         domain.FieldMap `json:"data"`
	Error        string          `json:"error,omitempty"`
}

type VerifyRequest struct {
	Data map[string]string `json:"data" binding:"required"`
}

type SubmitRequest struct {
	ExtractionID string            `json:"extraction_id" binding:"required"`
	Data         map[string]string `json:"data" binding:"required"`
}

type SubmitResponse struct {
	Status       string `json:"status"`
	ExtractionID string `json:"extraction_id"`
}

// FromExtraction maps a lifecycle record onto the wire shape. A submitted
// extraction reports its verified map; otherwise the extracted map is shown.
func FromExtraction(e *domain.Extraction) ExtractionResponse {
	resp := ExtractionResponse{
		ExtractionID: e.ID,
		Status:       e.Status,
		Data:         e.Fields,
		Error:        e.Cause,
	}
	if e.HasText {
		text := e.RawText
		resp.RawText = &text
	}
	if e.Status == domain.StatusSubmitted && e.Verified != nil {
		resp.Data = e.Verified
	}
	return resp
}
