package models

import "time"

// Outbox message delivery states
const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// OutboxMessage is a notification event staged in the same storage
// transaction as the mutation that produced it. A background sender publishes
// staged rows to Kafka, so broker failures never touch a committed mutation.
type OutboxMessage struct {
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	Topic      string    `db:"topic"`
	MessageKey string    `db:"message_key"`
	Payload    string    `db:"payload"`
	Status     string    `db:"status"`
	RetryCount int       `db:"retry_count"`
	ID         int64     `db:"id"`
}
