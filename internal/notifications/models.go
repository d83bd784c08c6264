package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeBookingConfirmed MessageType = "booking.confirmed"
	MessageTypeBookingCancelled MessageType = "booking.cancelled"
	MessageTypeSessionReleased  MessageType = "session.released"
)

// Message is the envelope of every domain event written to Kafka
type Message struct {
	ID         uuid.UUID   `json:"id"`
	Type       MessageType `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// BookingPayload describes a confirmed or cancelled booking
type BookingPayload struct {
	BookingID   string    `json:"bookingId"`
	BookingRef  string    `json:"bookingRef"`
	UserID      string    `json:"userId"`
	EventID     string    `json:"eventId"`
	SessionID   string    `json:"sessionId"`
	SeatCount   int       `json:"seatCount"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

// ReleasePayload announces that tickets for a cohort of sessions went on sale
type ReleasePayload struct {
	EventID     string    `json:"eventId"`
	SessionIDs  []string  `json:"sessionIds"`
	ReleaseDate time.Time `json:"releaseDate"`
}

type MessageBuilder struct {
	message *Message
}

func NewMessageBuilder(messageType MessageType) *MessageBuilder {
	return &MessageBuilder{
		message: &Message{
			ID:         uuid.New(),
			Type:       messageType,
			OccurredAt: time.Now().UTC(),
		},
	}
}

// WithKey sets the partition key; messages with the same key keep their order
func (b *MessageBuilder) WithKey(key string) *MessageBuilder {
	b.message.Key = key
	return b
}

func (b *MessageBuilder) WithPayload(payload interface{}) *MessageBuilder {
	b.message.Payload = payload
	return b
}

func (b *MessageBuilder) Build() *Message {
	return b.message
}

func (m *Message) PartitionKey() string {
	if m.Key != "" {
		return m.Key
	}
	return m.ID.String()
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
