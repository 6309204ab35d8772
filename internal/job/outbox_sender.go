// Package job holds the background loops: outbox delivery and access
// request expiry. Each loop runs on a ticker and stops when its context is
// cancelled.
package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/mq"
	"github.com/securebank-labs/securebank/internal/repository"
)

const outboxBatchSize = 50

// OutboxSender drains staged notification messages to Kafka. Delivery is
// at-least-once: a message is marked sent only after the broker acknowledges
// it, and a message that keeps failing is parked as FAILED after the retry
// budget so one bad row cannot wedge the queue.
type OutboxSender struct {
	db         *db.DB
	producer   *mq.Producer
	logger     *slog.Logger
	interval   time.Duration
	maxRetries int
}

// NewOutboxSender creates an OutboxSender
func NewOutboxSender(database *db.DB, producer *mq.Producer, logger *slog.Logger, interval time.Duration, maxRetries int) *OutboxSender {
	return &OutboxSender{
		db:         database,
		producer:   producer,
		logger:     logger,
		interval:   interval,
		maxRetries: maxRetries,
	}
}

// Run drains the outbox on every tick until the context is cancelled
func (s *OutboxSender) Run(ctx context.Context) {
	s.logger.Info("outbox sender started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("outbox sender stopped")
			return
		case <-ticker.C:
			s.drain(ctx)
		}
	}
}

func (s *OutboxSender) drain(ctx context.Context) {
	outbox := repository.NewOutboxRepository(s.db)

	messages, err := outbox.GetPending(ctx, outboxBatchSize)
	if err != nil {
		s.logger.Error("failed to load pending outbox messages", "error", err)
		return
	}

	for _, msg := range messages {
		if err := s.producer.Send(msg.Topic, msg.MessageKey, msg.Payload); err != nil {
			s.logger.Error("failed to publish outbox message",
				"message_id", msg.ID,
				"topic", msg.Topic,
				"retry_count", msg.RetryCount,
				"error", err,
			)
			if msg.RetryCount+1 >= s.maxRetries {
				if err := outbox.MarkFailed(ctx, msg.ID); err != nil {
					s.logger.Error("failed to park outbox message", "message_id", msg.ID, "error", err)
				}
				continue
			}
			if err := outbox.IncrementRetry(ctx, msg.ID); err != nil {
				s.logger.Error("failed to bump outbox retry count", "message_id", msg.ID, "error", err)
			}
			continue
		}

		if err := outbox.MarkSent(ctx, msg.ID); err != nil {
			s.logger.Error("failed to mark outbox message sent", "message_id", msg.ID, "error", err)
		}
	}
}
