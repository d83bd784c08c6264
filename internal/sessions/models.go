package sessions

import (
	"time"

	"ticketly/internal/seats"

	"github.com/google/uuid"
)

// Session is one dated occurrence of an event. It owns its seats and ticket types,
// and booking is the only thing that mutates them.
type Session struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_session_event_date" json:"eventId"`
	Date        time.Time     `gorm:"type:date;not null;uniqueIndex:idx_session_event_date" json:"date"`
	StartTime   string        `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime     string        `gorm:"type:varchar(5);not null" json:"endTime"`
	ReleaseDate time.Time     `gorm:"not null;index" json:"releaseDate"`
	Occupancy   int           `gorm:"not null;default:0;check:chk_session_occupancy,occupancy >= 0" json:"occupancy"`
	Tickets     []TicketType  `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"tickets"`
	Seats       []SessionSeat `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"seats,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (Session) TableName() string {
	return "sessions"
}

// TicketType is the priced inventory of one section within a session
type TicketType struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"-"`
	SessionID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_session_type" json:"-"`
	Type       seats.SectionName `gorm:"type:varchar(100);not null;uniqueIndex:idx_ticket_session_type" json:"type"`
	Price      float64           `gorm:"type:decimal(10,2);not null" json:"price"`
	Available  int               `gorm:"not null;check:chk_ticket_available,available >= 0 AND available <= total_seats" json:"available"`
	TotalSeats int               `gorm:"not null" json:"totalSeats"`
}

func (TicketType) TableName() string {
	return "session_tickets"
}

// SessionSeat is the stored form of a seat; Position keeps seat map order.
type SessionSeat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_seat,priority:1" json:"-"`
	Position  int       `gorm:"not null" json:"-"`

	seats.Seat `gorm:"embedded"`
}

func (SessionSeat) TableName() string {
	return "session_seats"
}

// Ticket returns the ticket type for a section, or nil
func (s *Session) Ticket(section seats.SectionName) *TicketType {
	for i := range s.Tickets {
		if s.Tickets[i].Type == section {
			return &s.Tickets[i]
		}
	}
	return nil
}

func (s *Session) seatIndex() map[string]int {
	idx := make(map[string]int, len(s.Seats))
	for i := range s.Seats {
		idx[s.Seats[i].Key()] = i
	}
	return idx
}

// TotalSeats sums the capacity of every ticket type
func (s *Session) TotalSeats() int {
	total := 0
	for _, t := range s.Tickets {
		total += t.TotalSeats
	}
	return total
}

// ReservedSeat is a seat taken by a booking, priced from its section's ticket type
type ReservedSeat struct {
	SeatID  string            `json:"seatId"`
	Section seats.SectionName `json:"section"`
	Price   float64           `json:"price"`
}

// TicketDebit is how many tickets of one type a booking consumed
type TicketDebit struct {
	Type      seats.SectionName `json:"type"`
	Quantity  int               `json:"quantity"`
	UnitPrice float64           `json:"unitPrice"`
}

// Reservation is the inventory change a booking applies to a session
type Reservation struct {
	Seats  []ReservedSeat
	Debits []TicketDebit
}

func (r *Reservation) Total() float64 {
	total := 0.0
	for _, s := range r.Seats {
		total += s.Price
	}
	return total
}

func (r *Reservation) Selections() []seats.Selection {
	out := make([]seats.Selection, len(r.Seats))
	for i, s := range r.Seats {
		out[i] = seats.Selection{SeatID: s.SeatID, Section: s.Section}
	}
	return out
}
