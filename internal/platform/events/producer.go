package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types published to the order topic.
const (
	TypeOrderCreated          = "order.created"
	TypeOrderStatusChanged    = "order.status_changed"
	TypeOrderPaymentCompleted = "order.payment_completed"
)

// Envelope is the wire format of every order event.
type Envelope struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload,omitempty"`
}

// Producer publishes order lifecycle events to Kafka, keyed by order ID so
// events for one order stay in partition order.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *Producer) PublishOrderEvent(ctx context.Context, eventType, orderID string, payload interface{}) error {
	data, err := json.Marshal(Envelope{
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: data,
	}); err != nil {
		return fmt.Errorf("events: publish %s: %w", eventType, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
