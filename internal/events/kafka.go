package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes JSON events with a single shared writer.
type KafkaPublisher struct {
	writer      messageWriter
	topicPrefix string
	logger      zerolog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers. Topic names
// are prefixed with topicPrefix.
func NewKafkaPublisher(brokers []string, topicPrefix string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	logger = logger.With().Str("component", "kafka-publisher").Logger()
	logger.Info().Strs("brokers", brokers).Msg("kafka publisher initialised")

	return newKafkaPublisher(writer, topicPrefix, logger)
}

func newKafkaPublisher(writer messageWriter, topicPrefix string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:      writer,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// PublishEvent implements Publisher.
func (p *KafkaPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(NewEvent(topic, event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topicPrefix + topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topicPrefix+topic).Msg("failed to publish event")
		return fmt.Errorf("failed to publish event to %s: %w", p.topicPrefix+topic, err)
	}

	p.logger.Debug().Str("topic", p.topicPrefix+topic).Str("key", key).Msg("event published")
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
