package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Event         string          `json:"event"`         // e.g., "item.created"
	Version       string          `json:"version"`       // e.g., "v1"
	Timestamp     time.Time       `json:"timestamp"`     // Event occurrence time
	Payload       json.RawMessage `json:"payload"`       // The actual event data
	TraceID       string          `json:"traceId"`       // For distributed tracing
	CorrelationID string          `json:"correlationId"` // For request correlation
}

type Headers struct {
	TraceID       string
	CorrelationID string
	Service       string
}

func NewEvent(eventName, version string, payload any, headers Headers) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventName, err)
	}

	return &Event{
		Event:         eventName,
		Version:       version,
		Timestamp:     time.Now().UTC(),
		Payload:       body,
		TraceID:       headers.TraceID,
		CorrelationID: headers.CorrelationID,
	}, nil
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unmarshals the payload into dst.
func (e *Event) DecodePayload(dst any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", e.Event)
	}
	return json.Unmarshal(e.Payload, dst)
}

func (e *Event) GetRoutingKey() string {
	return e.Event + "." + e.Version
}

func GenerateTraceID() string {
	return uuid.New().String()
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}
