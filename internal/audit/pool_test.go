package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visai-labs/extraction-be/internal/events"
)

// fakeAcknowledger records the ack decision taken for a delivery.
type fakeAcknowledger struct {
	mu      sync.Mutex
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return f.Nack(0, false, requeue)
}

// fakeEventStore collects recorded events and can simulate store outages.
type fakeEventStore struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (f *fakeEventStore) RecordEvent(_ context.Context, ev *events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func newTestAuditor(store EventStore) *Auditor {
	return NewAuditor(&Config{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:       store,
		Concurrency: 1,
	})
}

func eventBody(t *testing.T, ev events.Event) []byte {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body
}

func TestHandleDelivery(t *testing.T) {
	validEvent := events.Event{
		EventID:      "ev-1",
		ExtractionID: "ex-1",
		Type:         events.TypeFailed,
		Status:       "error",
		Cause:        "unable to decode image: unknown format",
		OccurredAt:   time.Now(),
	}

	tests := []struct {
		name        string
		body        []byte
		storeErr    error
		wantAck     bool
		wantNack    bool
		wantRequeue bool
		wantStored  int
	}{
		{
			name:       "valid event is recorded and acked",
			body:       nil, // filled below
			wantAck:    true,
			wantStored: 1,
		},
		{
			name:        "malformed json is nacked without requeue",
			body:        []byte("{not-json"),
			wantNack:    true,
			wantRequeue: false,
		},
		{
			name:        "missing extraction id is nacked without requeue",
			body:        []byte(`{"event_id":"ev-2","type":"extraction.completed"}`),
			wantNack:    true,
			wantRequeue: false,
		},
		{
			name:        "store failure is nacked with requeue",
			body:        nil, // filled below
			storeErr:    errors.New("connection refused"),
			wantNack:    true,
			wantRequeue: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if body == nil {
				body = eventBody(t, validEvent)
			}

			store := &fakeEventStore{err: tt.storeErr}
			auditor := newTestAuditor(store)
			ack := &fakeAcknowledger{}

			auditor.handleDelivery(context.Background(), "audit-0", amqp.Delivery{
				Acknowledger: ack,
				Body:         body,
			})

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			if tt.wantNack {
				assert.Equal(t, tt.wantRequeue, ack.requeue)
			}
			assert.Len(t, store.events, tt.wantStored)
		})
	}
}

func TestHandleDeliveryPreservesCause(t *testing.T) {
	store := &fakeEventStore{}
	auditor := newTestAuditor(store)
	ack := &fakeAcknowledger{}

	ev := events.Event{
		EventID:      "ev-9",
		ExtractionID: "ex-9",
		Type:         events.TypeFailed,
		Status:       "error",
		Cause:        "recognition failed: engine unavailable",
		OccurredAt:   time.Now().UTC().Truncate(time.Second),
	}

	auditor.handleDelivery(context.Background(), "audit-0", amqp.Delivery{
		Acknowledger: ack,
		Body:         eventBody(t, ev),
	})

	require.Len(t, store.events, 1)
	got := store.events[0]
	assert.Equal(t, ev.EventID, got.EventID)
	assert.Equal(t, ev.ExtractionID, got.ExtractionID)
	assert.Equal(t, ev.Type, got.Type)
	assert.Equal(t, ev.Cause, got.Cause)
	assert.True(t, ack.acked)
}
