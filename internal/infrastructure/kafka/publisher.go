package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"streaks-service/internal/config"
	"streaks-service/internal/domain/service"
)

// PushPublisher publishes push events to the delivery topic. The push
// transport itself (device tokens, APNs/FCM) lives behind the topic.
type PushPublisher struct {
	writer *kafka.Writer
}

// NewPushPublisher creates a new Kafka push publisher
func NewPushPublisher(cfg *config.KafkaConfig) *PushPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &PushPublisher{writer: writer}
}

// Publish writes one push event, keyed by user so a user's pushes stay ordered.
func (p *PushPublisher) Publish(ctx context.Context, event *service.PushEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal push event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish push event: %w", err)
	}

	return nil
}

// Close closes the Kafka writer
func (p *PushPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
