package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/metrics"
)

// Message is the value published for every queued entry.
type Message struct {
	Integration string          `json:"integration"`
	Endpoint    string          `json:"endpoint"`
	Entry       automator.Entry `json:"entry"`
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes accepted queue entries to a topic, keyed by endpoint so
// the entries of one queue stay ordered within a partition.
type Kafka struct {
	w      writer
	topic  string
	logger logger.Logger
}

func NewKafka(brokers []string, topic string, log logger.Logger) *Kafka {
	return &Kafka{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
		topic:  topic,
		logger: log.With(logger.String("component", "kafka.mirror"), logger.String("topic", topic)),
	}
}

func (k *Kafka) Mirror(ctx context.Context, integrationID, endpointID string, entry automator.Entry) error {
	value, err := json.Marshal(Message{Integration: integrationID, Endpoint: endpointID, Entry: entry})
	if err != nil {
		return fmt.Errorf("failed to marshal mirror message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(integrationID + "/" + endpointID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "integration", Value: []byte(integrationID)},
			{Key: "endpoint", Value: []byte(endpointID)},
		},
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		metrics.MirrorError()
		return fmt.Errorf("kafka write failed: %w", err)
	}
	k.logger.Debug("entry mirrored",
		logger.String("entry_id", entry.ID),
		logger.String("endpoint", endpointID))
	return nil
}

func (k *Kafka) Close() error { return k.w.Close() }

// Nop drops every entry. Used when no broker is configured.
type Nop struct{}

func (Nop) Mirror(context.Context, string, string, automator.Entry) error { return nil }

func (Nop) Close() error { return nil }

// Closer is a mirror the app shuts down.
type Closer interface {
	automator.Mirror
	Close() error
}

// New returns a Kafka mirror, or Nop when brokers is empty.
func New(brokers []string, topic string, log logger.Logger) Closer {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafka(brokers, topic, log)
}
