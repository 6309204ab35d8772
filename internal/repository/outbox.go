package repository

import (
	"context"
	"fmt"

	"github.com/securebank-labs/securebank/internal/models"
)

// OutboxRepository stages notification events for the background sender.
// Enqueue is expected to run inside the same transaction as the mutation the
// event describes.
type OutboxRepository interface {
	Enqueue(ctx context.Context, topic, key, payload string) error
	GetPending(ctx context.Context, limit int) ([]*models.OutboxMessage, error)
	MarkSent(ctx context.Context, id int64) error
	IncrementRetry(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}

type outboxRepository struct {
	db DBTX
}

// NewOutboxRepository creates a new OutboxRepository
func NewOutboxRepository(db DBTX) OutboxRepository {
	return &outboxRepository{db: db}
}

// Enqueue stages a message for publication
func (r *outboxRepository) Enqueue(ctx context.Context, topic, key, payload string) error {
	query := `
		INSERT INTO outbox_messages (topic, message_key, payload, status)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, topic, key, payload, models.OutboxStatusPending); err != nil {
		return fmt.Errorf("failed to enqueue outbox message: %w", err)
	}

	return nil
}

// GetPending returns the oldest staged messages up to limit
func (r *outboxRepository) GetPending(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	query := `
		SELECT id, topic, message_key, payload, status, retry_count, created_at, updated_at
		FROM outbox_messages
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, models.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending outbox messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.OutboxMessage
	for rows.Next() {
		var msg models.OutboxMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.Topic,
			&msg.MessageKey,
			&msg.Payload,
			&msg.Status,
			&msg.RetryCount,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox rows: %w", err)
	}

	return msgs, nil
}

func (r *outboxRepository) setStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE outbox_messages SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("failed to update outbox status: %w", err)
	}
	return nil
}

// MarkSent records a successful publication
func (r *outboxRepository) MarkSent(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, models.OutboxStatusSent)
}

// IncrementRetry bumps the retry counter after a failed publication
func (r *outboxRepository) IncrementRetry(ctx context.Context, id int64) error {
	query := `UPDATE outbox_messages SET retry_count = retry_count + 1, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment outbox retry count: %w", err)
	}
	return nil
}

// MarkFailed parks a message that exhausted its retries
func (r *outboxRepository) MarkFailed(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, models.OutboxStatusFailed)
}
