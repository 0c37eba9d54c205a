package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinebook/internal/shared/config"
	"cinebook/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher emits domain events for downstream notification workers.
// Publishing is best-effort from the caller's point of view; booking
// state is already durable before any event goes out.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
}

// NewPublisher creates a Kafka-backed publisher, or a no-op publisher when
// Kafka is disabled in configuration.
func NewPublisher(cfg *config.Config, log *logger.Logger) (Publisher, error) {
	if !cfg.Kafka.Enabled {
		log.Info("kafka disabled, events will not be published")
		return &noopPublisher{}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaPublisher{
		producer: producer,
		topic:    cfg.Kafka.Topic,
		logger:   log,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	event := Event{
		Type:      eventType,
		Key:       key,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.InfoContext(ctx, "event published",
		"type", eventType,
		"key", key,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

func (n *noopPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	return nil
}

func (n *noopPublisher) Close() error {
	return nil
}
