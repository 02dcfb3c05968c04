package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nayoon/stock-service/internal/core/domain"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewMessage(t *testing.T) {
	event := domain.NewStockChangedEvent(42, domain.StockOperationDecrease, 3, 17)

	msg, err := newMessage(event)
	require.NoError(t, err)

	assert.Equal(t, "42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "stock.decrease", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded["event_id"])
	assert.EqualValues(t, 42, decoded["product_id"])
	assert.Equal(t, "decrease", decoded["operation"])
	assert.EqualValues(t, 3, decoded["quantity"])
	assert.EqualValues(t, 17, decoded["remaining"])
}

func TestKafkaProducer_PublishStockChanged(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, logger: zap.NewNop()}

	require.NoError(t, p.PublishStockChanged(context.Background(),
		domain.NewStockChangedEvent(1, domain.StockOperationCreate, 50, 50)))
	require.NoError(t, p.PublishStockChanged(context.Background(),
		domain.NewStockChangedEvent(1, domain.StockOperationIncrease, 2, 52)))

	require.Len(t, w.messages, 2)
	assert.Equal(t, w.messages[0].Key, w.messages[1].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducer_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaProducer{writer: w, logger: zap.NewNop()}

	err := p.PublishStockChanged(context.Background(),
		domain.NewStockChangedEvent(1, domain.StockOperationDecrease, 1, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaProducer_DefaultTopic(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, "", zap.NewNop())
	defer p.Close()

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultTopic, w.Topic)
}
