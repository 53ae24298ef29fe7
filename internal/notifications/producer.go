package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"tixbridge/pkg/logger"
)

// Publisher publishes checkout notifications
type Publisher interface {
	PublishCheckoutEvent(ctx context.Context, notification *CheckoutNotification) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka checkout producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "checkout-events",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// KafkaPublisher publishes checkout notifications to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewSaramaConfig builds the producer settings shared by the real and mock producers
func NewSaramaConfig(config *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Idempotent producers require a single in-flight request
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Use hash partitioner for consistent routing based on session
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// NewKafkaPublisher connects a sync producer to the configured brokers
func NewKafkaPublisher(config *KafkaProducerConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, config *KafkaProducerConfig, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{
		producer: producer,
		config:   config,
		log:      log.WithComponent("notifications"),
	}
}

// PublishCheckoutEvent publishes a single notification to Kafka
func (kp *KafkaPublisher) PublishCheckoutEvent(ctx context.Context, notification *CheckoutNotification) error {
	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	kp.log.InfoContext(ctx, "Checkout notification published",
		slog.String("topic", kp.config.Topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("type", string(notification.Type)),
		slog.String("session_id", notification.SessionID),
	)
	return nil
}

// createHeaders creates Kafka headers for notifications
func (kp *KafkaPublisher) createHeaders(notification *CheckoutNotification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		{Key: []byte("priority"), Value: []byte(notification.Priority)},
		{Key: []byte("provider_event_id"), Value: []byte(notification.ProviderEventID)},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("producer"), Value: []byte("tixbridge-checkout")},
		{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
	}

	if notification.ReservationID != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("reservation_id"),
			Value: []byte(notification.ReservationID),
		})
	}

	return headers
}

// Close closes the Kafka producer
func (kp *KafkaPublisher) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// NoopPublisher is used when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) PublishCheckoutEvent(context.Context, *CheckoutNotification) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
