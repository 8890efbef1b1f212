package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anonto42/vidshelf/backend/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Producer publishes JSON events keyed by recipient
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Transport:    newTransport(cfg),
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Publish writes one event. A nil producer drops the event silently.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	if p == nil || p.writer == nil {
		return nil
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
