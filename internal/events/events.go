// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
	OrderCancelled     = "order.cancelled"
)

// OrderEvent is the JSON payload written to the orders topic.
type OrderEvent struct {
	Type          string          `json:"type"`
	OrderID       int64           `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	UserID        int64           `json:"userId"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Total         decimal.Decimal `json:"total"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// NewOrderEvent snapshots an order for publishing.
func NewOrderEvent(eventType string, o *models.Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher defines the interface for order event delivery.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, e OrderEvent) error
	Close() error
}

// KafkaPublisher implements Publisher using a Sarama sync producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

// NewKafkaConfig returns the producer settings used in production.
func NewKafkaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	return config
}

// NewKafkaPublisher connects a sync producer to the brokers.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewKafkaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to start Sarama producer: %w", err)
	}
	log.Info("kafka producer connected", "brokers", brokers, "topic", topic)
	return NewKafkaPublisherWithProducer(producer, topic, log), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log.With("component", "events")}
}

// PublishOrderEvent sends the event keyed by order number so every event of
// one order lands on the same partition.
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, e OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.OrderNumber),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(e.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Error("failed to send order event", "topic", p.topic, "order", e.OrderNumber, "error", err)
		return err
	}
	p.log.Debug("order event sent", "type", e.Type, "order", e.OrderNumber, "partition", partition, "offset", offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events. It is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error { return nil }
