// Package outbox relays document events recorded by committed transactions.
//
// Storage drivers persist events in the transaction of the change that
// produced them (documents.EventPublisher) and expose them again as a Source.
// The Relay drains sources on a ticker and hands each message to a Handler.
package outbox

import (
	"context"
	"time"

	"factura/internal/core/id"
)

// MaxRetries is the number of failed deliveries after which a message is
// parked as failed.
const MaxRetries = 5

// Status of a stored message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Message is an event waiting for delivery.
type Message struct {
	ID            id.ID     `db:"id"`
	AggregateType string    `db:"aggregate_type"`
	AggregateID   id.ID     `db:"aggregate_id"`
	EventType     string    `db:"event_type"`
	Payload       []byte    `db:"payload"`
	Status        Status    `db:"status"`
	RetryCount    int       `db:"retry_count"`
	LastError     *string   `db:"last_error"`
	CreatedAt     time.Time `db:"created_at"`
}

// Handler delivers one message. An error schedules a retry.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Source hands pending messages to h and records the outcome.
// It returns the number of messages delivered.
type Source interface {
	ProcessBatch(ctx context.Context, batchSize int, h Handler) (int, error)
}

// RetryDelay is the backoff before the next delivery attempt.
func RetryDelay(retryCount int) time.Duration {
	return time.Duration(retryCount+1) * time.Minute
}
