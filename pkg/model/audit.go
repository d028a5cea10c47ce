package model

import "time"

const (
	AuditActionCreate       = "create"
	AuditActionStatusChange = "status_change"
	AuditActionDelete       = "delete"
)

// AuditEntry is an append-only record of a booking mutation. Entries are
// written in the same transaction as the mutation they describe.
type AuditEntry struct {
	ID        string         `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID string         `json:"booking_id" bson:"booking_id"`
	Action    string         `json:"action" bson:"action"`
	Actor     string         `json:"actor" bson:"actor"`
	Payload   map[string]any `json:"payload,omitempty" bson:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}
