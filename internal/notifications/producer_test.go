package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducerConfig() *ProducerConfig {
	return &ProducerConfig{BookingTopic: "bookings", ReleaseTopic: "session-releases", Timeout: time.Second}
}

func TestKafkaPublisherPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var decoded struct {
			Type    MessageType    `json:"type"`
			Key     string         `json:"key"`
			Payload BookingPayload `json:"payload"`
		}
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.Type != MessageTypeBookingConfirmed || decoded.Payload.BookingRef != "TKT-20250601-ABCDEF" {
			return errors.New("unexpected message body")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, testProducerConfig())
	message := NewMessageBuilder(MessageTypeBookingConfirmed).
		WithKey("session-1").
		WithPayload(BookingPayload{BookingRef: "TKT-20250601-ABCDEF", SeatCount: 2}).
		Build()

	require.NoError(t, publisher.Publish(context.Background(), message))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherPublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, testProducerConfig())
	err := publisher.Publish(context.Background(), NewMessageBuilder(MessageTypeBookingCancelled).Build())

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestTopicFor(t *testing.T) {
	publisher := NewKafkaPublisherWithProducer(nil, testProducerConfig())

	assert.Equal(t, "bookings", publisher.topicFor(MessageTypeBookingConfirmed))
	assert.Equal(t, "bookings", publisher.topicFor(MessageTypeBookingCancelled))
	assert.Equal(t, "session-releases", publisher.topicFor(MessageTypeSessionReleased))
}

func TestPartitionKeyFallsBackToID(t *testing.T) {
	message := NewMessageBuilder(MessageTypeSessionReleased).Build()
	assert.Equal(t, message.ID.String(), message.PartitionKey())

	message = NewMessageBuilder(MessageTypeSessionReleased).WithKey("event-1").Build()
	assert.Equal(t, "event-1", message.PartitionKey())
}

func TestLogPublisher(t *testing.T) {
	publisher := NewLogPublisher()
	assert.NoError(t, publisher.Publish(context.Background(), NewMessageBuilder(MessageTypeBookingConfirmed).Build()))
	assert.NoError(t, publisher.Close())
}
