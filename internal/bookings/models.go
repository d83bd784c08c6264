package bookings

import (
	"time"

	"ticketly/internal/seats"
	"ticketly/internal/sessions"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanBeCancelled checks if a booking with this status can be cancelled
func (s Status) CanBeCancelled() bool {
	return s == StatusConfirmed || s == StatusPending
}

// Booking is the record of seats taken from one session by one user
type Booking struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string          `gorm:"type:varchar(64);not null;index" json:"user"`
	EventID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"event"`
	SessionID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"session"`
	Seats          []BookedSeat    `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"seats"`
	TicketsSummary []TicketSummary `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"ticketsSummary"`
	TotalAmount    float64         `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status         Status          `gorm:"type:varchar(20);not null;default:'confirmed';index;check:chk_booking_status,status IN ('pending','confirmed','cancelled')" json:"status"`
	BookingRef     string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"bookingRef"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	CancelledAt    *time.Time      `json:"cancelledAt,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookedSeat snapshots a seat and the price paid for it
type BookedSeat struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"-"`
	BookingID uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	SeatID    string            `gorm:"type:varchar(50);not null" json:"seatId"`
	Section   seats.SectionName `gorm:"type:varchar(100);not null" json:"section"`
	Price     float64           `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (BookedSeat) TableName() string {
	return "booked_seats"
}

type TicketSummary struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"-"`
	BookingID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	Type       seats.SectionName `gorm:"type:varchar(100);not null" json:"type"`
	Quantity   int               `gorm:"not null" json:"quantity"`
	TotalPrice float64           `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
}

func (TicketSummary) TableName() string {
	return "booking_ticket_summaries"
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// newBooking turns a reservation into a confirmed booking
func newBooking(eventID, sessionID uuid.UUID, userID, ref string, res *sessions.Reservation, now time.Time) *Booking {
	b := &Booking{
		ID:             uuid.New(),
		UserID:         userID,
		EventID:        eventID,
		SessionID:      sessionID,
		Seats:          make([]BookedSeat, len(res.Seats)),
		TicketsSummary: make([]TicketSummary, len(res.Debits)),
		TotalAmount:    res.Total(),
		Status:         StatusConfirmed,
		BookingRef:     ref,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i, s := range res.Seats {
		b.Seats[i] = BookedSeat{ID: uuid.New(), BookingID: b.ID, SeatID: s.SeatID, Section: s.Section, Price: s.Price}
	}
	for i, d := range res.Debits {
		b.TicketsSummary[i] = TicketSummary{
			ID:         uuid.New(),
			BookingID:  b.ID,
			Type:       d.Type,
			Quantity:   d.Quantity,
			TotalPrice: d.UnitPrice * float64(d.Quantity),
		}
	}
	return b
}

// Reservation rebuilds the inventory change the booking applied, for undoing it
func (b *Booking) Reservation() *sessions.Reservation {
	res := &sessions.Reservation{
		Seats:  make([]sessions.ReservedSeat, len(b.Seats)),
		Debits: make([]sessions.TicketDebit, len(b.TicketsSummary)),
	}
	for i, s := range b.Seats {
		res.Seats[i] = sessions.ReservedSeat{SeatID: s.SeatID, Section: s.Section, Price: s.Price}
	}
	for i, t := range b.TicketsSummary {
		unit := 0.0
		if t.Quantity > 0 {
			unit = t.TotalPrice / float64(t.Quantity)
		}
		res.Debits[i] = sessions.TicketDebit{Type: t.Type, Quantity: t.Quantity, UnitPrice: unit}
	}
	return res
}
