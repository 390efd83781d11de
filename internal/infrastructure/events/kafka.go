package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/peerrent/auth-service/internal/core/domain"
)

const DefaultTopic = "auth.events"

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	// Async makes writes fire-and-forget; failures are only logged.
	Async bool
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements ports.AuthEventPublisher on a kafka-go writer.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    zerolog.Logger
	now    func() time.Time
}

func NewKafkaPublisher(cfg ProducerConfig, log zerolog.Logger) *KafkaPublisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	log = log.With().Str("component", "kafka_publisher").Logger()

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("messages", len(messages)).Msg("async event publish failed")
			}
		},
	}

	return newKafkaPublisher(w, cfg.Topic, log)
}

func newKafkaPublisher(w messageWriter, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, log: log, now: time.Now}
}

func (p *KafkaPublisher) AccountRegistered(ctx context.Context, account *domain.Account) error {
	return p.publish(ctx, TypeAccountRegistered, account)
}

func (p *KafkaPublisher) LoginCodeRequested(ctx context.Context, account *domain.Account) error {
	return p.publish(ctx, TypeLoginCodeRequested, account)
}

func (p *KafkaPublisher) LoginSucceeded(ctx context.Context, account *domain.Account) error {
	return p.publish(ctx, TypeLoginSucceeded, account)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, account *domain.Account) error {
	event, err := newEvent(eventType, account.ID, accountData{AccountID: account.ID, Role: account.Role}, p.now())
	if err != nil {
		return fmt.Errorf("build event: %w", err)
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}

	p.log.Debug().
		Str("event_type", event.EventType).
		Str("aggregate_id", event.AggregateID).
		Msg("event published")
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
