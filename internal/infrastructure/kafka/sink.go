package kafka

import (
	"context"

	"github.com/example/catalog-flipbook/internal/events"
)

// Sink forwards bus events to Kafka as envelopes keyed by event name.
type Sink struct {
	producer *Producer
}

func NewSink(producer *Producer) *Sink {
	return &Sink{producer: producer}
}

// Handle implements events.Handler.
func (s *Sink) Handle(ctx context.Context, event events.Event) error {
	env, err := events.Wrap(event)
	if err != nil {
		return err
	}
	return s.producer.Publish(ctx, env.Name, env)
}

var _ events.Handler = (*Sink)(nil)
