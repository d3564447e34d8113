package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/domain"
)

// EventTypeRefundRequested identifies a refund submission event
const EventTypeRefundRequested = "refund.requested"

// RefundRequestedEvent is the wire shape published when a user submits
// an accepted refund. The backend settlement pipeline consumes it.
type RefundRequestedEvent struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	TicketID     string            `json:"ticket_id"`
	RefundAmount float64           `json:"refund_amount"`
	Reason       string            `json:"reason"`
	Policy       domain.RefundRule `json:"policy"`
	Timestamp    int64             `json:"timestamp"`
}

// Publisher defines the interface for handing refund requests to the backend
type Publisher interface {
	// PublishRefundRequested publishes a refund submission event
	PublishRefundRequested(ctx context.Context, req domain.RefundRequest) (string, error)

	// Close closes the publisher
	Close() error
}

// NoopPublisher is a no-operation publisher for tests and development
type NoopPublisher struct{}

// PublishRefundRequested implements Publisher for NoopPublisher
func (NoopPublisher) PublishRefundRequested(ctx context.Context, req domain.RefundRequest) (string, error) {
	return uuid.NewString(), nil
}

// Close implements Publisher for NoopPublisher
func (NoopPublisher) Close() error { return nil }

// KafkaPublisher publishes refund submission events to a Kafka topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher creates a Kafka publisher connected to the given brokers
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// NewKafkaPublisherWithProducer creates a Kafka publisher around an existing
// producer. Used by tests with a mock producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// PublishRefundRequested implements Publisher for KafkaPublisher.
// Events are keyed by ticket ID so submissions for the same ticket land in
// the same partition in order.
func (p *KafkaPublisher) PublishRefundRequested(ctx context.Context, req domain.RefundRequest) (string, error) {
	event := RefundRequestedEvent{
		ID:           uuid.NewString(),
		Type:         EventTypeRefundRequested,
		TicketID:     req.TicketID,
		RefundAmount: req.RefundAmount,
		Reason:       req.Reason,
		Policy:       req.Policy,
		Timestamp:    time.Now().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(req.TicketID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return "", fmt.Errorf("failed to publish refund event: %w", err)
	}

	p.logger.Info("Published refund requested event",
		zap.String("event_id", event.ID),
		zap.String("ticket_id", req.TicketID),
		zap.Float64("refund_amount", req.RefundAmount),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))

	return event.ID, nil
}

// Close closes the underlying producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
