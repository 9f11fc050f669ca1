package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.With(zap.String("component", "kafka_consumer"), zap.String("topic", topic)),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// OrderEventHandler decodes order events and hands them to fn. Undecodable
// messages are logged and skipped.
func (c *Consumer) OrderEventHandler(fn func(context.Context, OrderEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := DecodeOrderEvent(msg.Value)
		if err != nil {
			c.log.Warn("skipping undecodable event", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}
		return fn(ctx, event)
	}
}

func DecodeOrderEvent(data []byte) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return OrderEvent{}, err
	}
	if event.Type == "" || event.OrderID == "" {
		return OrderEvent{}, errors.New("event has no type or order id")
	}
	return event, nil
}
