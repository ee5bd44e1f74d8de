package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	OrderCreated  = "order_created"
	OrderUpdated  = "order_updated"
	OrderDeleted  = "order_deleted"
	TableOccupied = "table_occupied"
	TableReleased = "table_released"
	UserLoggedIn  = "user_logged_in"
	TrialExpired  = "trial_expired"
)

type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	OrderID uint      `json:"orderId,omitempty"`
	TableID uint      `json:"tableId,omitempty"`
	UserID  uint      `json:"userId,omitempty"`
	Status  string    `json:"status,omitempty"`
}

// Publisher sends events that share a key in one write, in order.
type Publisher interface {
	Publish(ctx context.Context, key string, evs ...Event) error
	Close() error
}

// New returns a Kafka publisher, or a no-op one when no brokers are configured.
func New(brokers []string, topic string, logger *slog.Logger) Publisher {
	if len(brokers) == 0 {
		logger.Info("kafka disabled; events are dropped")
		return Noop{}
	}
	return NewKafkaPublisher(brokers, topic)
}

// batchTimeout bounds how long a synchronous write waits for a batch to fill.
// kafka-go defaults to one second, which every request would pay.
const batchTimeout = 10 * time.Millisecond

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           batchTimeout,
			WriteTimeout:           5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, evs ...Event) error {
	msgs, err := messages(key, evs)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func messages(key string, evs []Event) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(evs))
	for _, e := range evs {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("kafka: json.Marshal failed: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: data})
	}
	return msgs, nil
}

type Noop struct{}

func (Noop) Publish(context.Context, string, ...Event) error { return nil }
func (Noop) Close() error                                    { return nil }
