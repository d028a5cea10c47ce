package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is a producer-side Kafka message. Key selects the partition, so
// events keyed by booking id preserve per-booking ordering.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSource        = "source"
	HeaderSchemaVersion = "schema-version"
)

const schemaVersion = "1"

// NewEvent builds a message for a domain event, JSON-encoding the payload
// and stamping the standard headers.
func NewEvent(eventType, key string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return Message{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			HeaderEventID:       uuid.NewString(),
			HeaderEventType:     eventType,
			HeaderSource:        "maitre",
			HeaderSchemaVersion: schemaVersion,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}
