package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessedWebhookEvent represents the processed_webhook_events table - the
// idempotency record for at-least-once webhook delivery. A replayed event ID
// short-circuits to an acknowledged no-op.
type ProcessedWebhookEvent struct {
	// EventID is the processor-assigned event identifier
	EventID string `gorm:"column:event_id;primaryKey;type:varchar(64)"`
	// EventType is the processor event type, kept for replay diagnostics
	EventType string `gorm:"column:event_type;not null;type:varchar(64)"`
	// Payload is the raw verified event body
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// ProcessedAt is the timestamp when this event was first handled
	ProcessedAt time.Time `gorm:"column:processed_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ProcessedWebhookEvent model
func (ProcessedWebhookEvent) TableName() string {
	return "processed_webhook_events"
}
