package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// InvestmentEventProducer publishes recorded-investment events. Writes are synchronous so the
// outbox poller only marks a message processed once the broker has acknowledged it.
type InvestmentEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewInvestmentEventProducer ensures the investment topic exists and returns a producer for it
func NewInvestmentEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*InvestmentEventProducer, error) {
	if cfg.InvestmentTopic == "" {
		return nil, fmt.Errorf("kafka investment topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for investment event producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.InvestmentTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure investment topic %s exists: %w", cfg.InvestmentTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.InvestmentTopic,
		Balancer:     &kafka.Hash{}, // Same key, same partition: events of one project stay ordered
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &InvestmentEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.InvestmentTopic,
	}, nil
}

func (p *InvestmentEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal investment event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish investment event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish investment event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published investment event", "topic", p.topic, "key", key)
	return nil
}

func (p *InvestmentEventProducer) Close() error {
	p.logger.Info("Closing investment event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
