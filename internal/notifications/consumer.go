package notifications

import (
	"context"
	"encoding/json"

	"cinebook/internal/shared/config"
	"cinebook/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer drains the notification topic and dispatches deliveries. The
// current dispatch is a structured log entry per event; mail and push
// providers plug in behind handleEvent.
type Consumer struct {
	group  sarama.ConsumerGroup
	topic  string
	logger *logger.Logger
}

func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:  group,
		topic:  cfg.Kafka.Topic,
		logger: log,
	}, nil
}

// Start consumes until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{logger: c.logger}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("consumer group error", "error", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	logger *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.handleEvent(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *groupHandler) handleEvent(ctx context.Context, message *sarama.ConsumerMessage) {
	var event Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.logger.Error("failed to decode event, skipping",
			"partition", message.Partition,
			"offset", message.Offset,
			"error", err,
		)
		return
	}

	h.logger.InfoContext(ctx, "notification delivered",
		"type", event.Type,
		"key", event.Key,
		"partition", message.Partition,
		"offset", message.Offset,
	)
}
