package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/catalog-flipbook/internal/logger"
)

// MessageHandler processes one message. A returned error is logged and the
// message is still committed; envelopes are notifications, not work items.
type MessageHandler func(ctx context.Context, key, value []byte) error

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	reader     MessageReader
	retryDelay time.Duration
	log        *logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return NewConsumerWithReader(reader, log)
}

// NewConsumerWithReader builds a consumer over an existing reader.
func NewConsumerWithReader(r MessageReader, log *logger.Logger) *Consumer {
	return &Consumer{reader: r, retryDelay: time.Second, log: log.Component("KafkaConsumer")}
}

// Consume runs until ctx is cancelled. Fetch errors are retried after a pause.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("error fetching message", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			c.log.Warn("error handling message", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Warn("error committing offset", "error", err, "offset", msg.Offset)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
