package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/domain"
)

func testRequest() domain.RefundRequest {
	return domain.RefundRequest{
		TicketID:     "tkt-42",
		RefundAmount: 0.7125,
		Reason:       "Change of plans",
		Policy: domain.RefundRule{
			Timeframe:   "2-24 hours",
			Percentage:  75,
			Description: "Partial refund available",
		},
	}
}

func TestNoopPublisher(t *testing.T) {
	publisher := NoopPublisher{}

	id, err := publisher.PublishRefundRequested(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("expected no error from NoopPublisher, got: %v", err)
	}
	if id == "" {
		t.Error("expected a generated event id")
	}
}

func TestKafkaPublisher_PublishRefundRequested(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "refund.requested" {
			return errors.New("unexpected topic " + msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "tkt-42" {
			return errors.New("expected message keyed by ticket id, got " + string(key))
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event RefundRequestedEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.Type != EventTypeRefundRequested {
			return errors.New("unexpected event type " + event.Type)
		}
		if event.TicketID != "tkt-42" {
			return errors.New("unexpected ticket id " + event.TicketID)
		}
		if event.Policy.Percentage != 75 {
			return errors.New("policy rule not carried in event")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "refund.requested", zap.NewNop())

	id, err := publisher.PublishRefundRequested(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if id == "" {
		t.Error("expected a generated event id")
	}

	if err := publisher.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "refund.requested", zap.NewNop())

	if _, err := publisher.PublishRefundRequested(context.Background(), testRequest()); err == nil {
		t.Fatal("expected publish error")
	}

	if err := publisher.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestPublisherInterface(t *testing.T) {
	var _ Publisher = NoopPublisher{}
	var _ Publisher = &KafkaPublisher{}
}
