// Package mq wraps the Kafka producer used by the outbox sender.
package mq

import (
	"fmt"

	"github.com/IBM/sarama"
)

// Producer publishes notification events to Kafka
type Producer struct {
	producer sarama.SyncProducer
}

// NewProducer creates a synchronous producer that waits for full replica
// acknowledgement before reporting success.
func NewProducer(brokers []string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{producer: producer}, nil
}

// Send publishes one message and waits for the broker acknowledgement
func (p *Producer) Send(topic, key, value string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(value),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send kafka message: %w", err)
	}

	return nil
}

// Close shuts down the underlying producer
func (p *Producer) Close() error {
	return p.producer.Close()
}
