// Package events publishes stock changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nayoon/stock-service/internal/core/domain"
)

const (
	DefaultTopic   = "stock-events"
	publishTimeout = 10 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer writes one message per stock change, keyed by product id so
// a product's events stay ordered within a partition.
type KafkaProducer struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, logger: logger}
}

func (p *KafkaProducer) PublishStockChanged(ctx context.Context, event domain.StockChangedEvent) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write stock event %s: %w", event.EventID, err)
	}

	p.logger.Debug("stock event published",
		zap.String("event_id", event.EventID),
		zap.Int64("product_id", event.ProductID),
		zap.String("operation", string(event.Operation)))

	return nil
}

func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func newMessage(event domain.StockChangedEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal stock event %s: %w", event.EventID, err)
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("stock." + string(event.Operation))},
		},
	}, nil
}
