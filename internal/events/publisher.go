package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
)

// CartEvent is the mutation record emitted for analytics and downstream
// consumers. Emission is best-effort: the cart never depends on delivery.
type CartEvent struct {
	Action    string    `json:"action"` // added, merged, removed, cleared, pruned
	Partition string    `json:"partition"`
	ProductID uint      `json:"product_id,omitempty"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	CartCount int       `json:"cart_count"`
	At        time.Time `json:"at"`
}

// Publisher emits cart events without ever blocking or failing the caller.
type Publisher interface {
	CartChanged(event CartEvent)
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher writing to a single topic keyed by
// cart partition, so one cart's events stay ordered.
func NewKafkaPublisher(brokers []string, topic string) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) CartChanged(event CartEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			logger.Warn("Failed to encode cart event", map[string]interface{}{
				"action": event.Action,
				"error":  err.Error(),
			})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(event.Partition),
			Value: data,
			Time:  event.At,
		})
		if err != nil {
			logger.Warn("Failed to publish cart event", map[string]interface{}{
				"action":    event.Action,
				"partition": event.Partition,
				"error":     err.Error(),
			})
		}
	}()
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) CartChanged(CartEvent) {}
func (NoopPublisher) Close() error          { return nil }
