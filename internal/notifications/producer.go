package notifications

import (
	"context"
	"fmt"
	"time"

	"ticketly/internal/shared/config"
	"ticketly/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher delivers domain messages. Callers treat delivery as best effort.
type Publisher interface {
	Publish(ctx context.Context, message *Message) error
	Close() error
}

type ProducerConfig struct {
	Brokers         []string
	BookingTopic    string
	ReleaseTopic    string
	RetryMax        int
	Timeout         time.Duration
	RequiredAcks    sarama.RequiredAcks
	CompressionType sarama.CompressionCodec
}

func ProducerConfigFrom(cfg config.KafkaConfig) *ProducerConfig {
	return &ProducerConfig{
		Brokers:         cfg.Brokers,
		BookingTopic:    cfg.BookingTopic,
		ReleaseTopic:    cfg.ReleaseTopic,
		RetryMax:        cfg.RetryMax,
		Timeout:         cfg.Timeout,
		RequiredAcks:    sarama.WaitForAll,
		CompressionType: sarama.CompressionSnappy,
	}
}

// KafkaPublisher writes messages with a sarama sync producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *ProducerConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	saramaConfig.Producer.Compression = cfg.CompressionType
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, cfg *ProducerConfig) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		config:   cfg,
		log:      logger.GetDefault().WithComponent("kafka-publisher"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, message *Message) error {
	value, err := message.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topicFor(message.Type),
		Key:       sarama.StringEncoder(message.PartitionKey()),
		Value:     sarama.ByteEncoder(value),
		Headers:   p.createHeaders(message),
		Timestamp: message.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send %s to Kafka: %w", message.Type, err)
	}

	p.log.DebugContext(ctx, "message published",
		"topic", msg.Topic,
		"partition", partition,
		"offset", offset,
		"type", string(message.Type),
	)
	return nil
}

func (p *KafkaPublisher) topicFor(t MessageType) string {
	if t == MessageTypeSessionReleased {
		return p.config.ReleaseTopic
	}
	return p.config.BookingTopic
}

func (p *KafkaPublisher) createHeaders(message *Message) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("message_id"), Value: []byte(message.ID.String())},
		{Key: []byte("message_type"), Value: []byte(message.Type)},
		{Key: []byte("producer"), Value: []byte("ticketly")},
		{Key: []byte("occurred_at"), Value: []byte(message.OccurredAt.Format(time.RFC3339))},
	}
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	p.log.Info("kafka producer closed")
	return nil
}

// LogPublisher stands in when Kafka is disabled and only logs what would be sent
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{log: logger.GetDefault().WithComponent("notifications")}
}

func (p *LogPublisher) Publish(ctx context.Context, message *Message) error {
	p.log.InfoContext(ctx, "domain event", "type", string(message.Type), "key", message.PartitionKey())
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
