package queue

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/pkg/config"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"github.com/segmentio/kafka-go"
)

const (
	maxHandleAttempts = 3
	retryBackoff      = 500 * time.Millisecond
)

// Consumer feeds domain events from Kafka into the EventHandler
type Consumer struct {
	reader  *kafka.Reader
	handler *EventHandler
}

func NewConsumer(cfg config.KafkaConfig, handler *EventHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.EventsTopic,
		Dialer:   newDialer(cfg),
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, handler: handler}
}

// Run consumes until ctx is cancelled or the reader is closed
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			logging.Error().Err(err).Msg("kafka fetch failed")
			continue
		}

		msgCtx := logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
		c.process(msgCtx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Int64("offset", msg.Offset).Msg("kafka commit failed")
		}
	}
}

// process never blocks the partition: undecodable and permanently failing events are logged and skipped
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	log := logging.Ctx(ctx)
	evt, err := DecodeEvent(msg.Value)
	if err != nil {
		log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping domain event")
		return
	}

	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		err = c.handler.Handle(ctx, evt)
		if err == nil || !retryable(err) {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	if err != nil {
		log.Error().Err(err).Str("action", evt.Action).Int64("offset", msg.Offset).Msg("domain event dropped")
	}
}

// retryable reports store failures; bad input and missing actors will not get better
func retryable(err error) bool {
	return errors.Is(err, repositories.ErrWriteFailure)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
