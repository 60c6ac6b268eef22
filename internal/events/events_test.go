package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishOrderEvent_KeyedByOrderNumber(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewKafkaConfig())
	defer producer.Close()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "AN-1A2B3C4D", string(key))
		assert.Equal(t, "orders", msg.Topic)

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var e OrderEvent
		require.NoError(t, json.Unmarshal(value, &e))
		assert.Equal(t, OrderPlaced, e.Type)
		assert.Equal(t, int64(42), e.OrderID)
		assert.Equal(t, "5650", e.Total.String())
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "orders", discardLogger())
	order := &models.Order{ID: 42, OrderNumber: "AN-1A2B3C4D", UserID: 3, Status: models.OrderStatusPending, Total: decimal.RequireFromString("5650")}

	err := pub.PublishOrderEvent(context.Background(), NewOrderEvent(OrderPlaced, order))
	assert.NoError(t, err)
}

func TestPublishOrderEvent_ProducerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewKafkaConfig())
	defer producer.Close()

	boom := errors.New("broker down")
	producer.ExpectSendMessageAndFail(boom)

	pub := NewKafkaPublisherWithProducer(producer, "orders", discardLogger())
	err := pub.PublishOrderEvent(context.Background(), OrderEvent{Type: OrderCancelled, OrderNumber: "AN-X"})
	assert.ErrorIs(t, err, boom)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishOrderEvent(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close())
}
