// Package events defines the extraction lifecycle event stream. Terminal
// pipeline transitions and submissions are published to a message broker so
// downstream consumers (audit, alerting) see them without polling the API.
// Failure causes travel here rather than in the extractions schema.
package events

import (
	"context"
	"time"
)

// Event types emitted by the orchestrator.
const (
	TypeCompleted = "extraction.completed"
	TypeFailed    = "extraction.failed"
	TypeSubmitted = "extraction.submitted"
)

// Event describes one lifecycle transition of an extraction.
type Event struct {
	EventID      string    `json:"event_id"`
	ExtractionID string    `json:"extraction_id"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Cause        string    `json:"cause,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher delivers lifecycle events to interested consumers. Publishing is
// best-effort from the orchestrator's point of view: a failed publish must
// never fail the transition that triggered it.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards all events. Used when no broker is configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
