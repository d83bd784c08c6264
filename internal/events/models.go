package events

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"ticketly/internal/recurrence"
	"ticketly/internal/sessions"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AcceptsBookings reports whether seats of the event may still be booked
func (s Status) AcceptsBookings() bool {
	return s == StatusUpcoming || s == StatusOngoing
}

type Event struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string            `gorm:"not null;size:255" json:"title"`
	Description      string            `gorm:"type:text" json:"description"`
	Recurrence       recurrence.Kind   `gorm:"type:varchar(20);not null" json:"recurrence"`
	StartDate        time.Time         `gorm:"type:date;not null;index" json:"startDate"`
	EndDate          *time.Time        `gorm:"type:date" json:"endDate,omitempty"`
	StartTime        string            `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime          string            `gorm:"type:varchar(5);not null" json:"endTime"`
	SelectedWeekdays StringList        `gorm:"type:jsonb" json:"selectedWeekdays"`
	Tickets          TicketDefinitions `gorm:"type:jsonb;not null" json:"ticketDefinitions"`
	Status           Status            `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`
	StartingPrice    float64           `gorm:"type:decimal(10,2);not null;default:0" json:"startingPrice"`
	VenueID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"venueId"`
	OrganizerID      string            `gorm:"type:varchar(64);not null;index" json:"organizerId"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (Event) TableName() string {
	return "events"
}

// Rule rebuilds the recurrence rule the event was created with
func (e *Event) Rule() recurrence.Rule {
	return recurrence.Rule{
		Kind:             e.Recurrence,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		SelectedWeekdays: e.SelectedWeekdays,
	}
}

// Plan is the materialization input for the event
func (e *Event) Plan() sessions.Plan {
	return sessions.Plan{
		Rule:      e.Rule(),
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Tickets:   e.Tickets,
	}
}

// LastDate is the final calendar day the event runs
func (e *Event) LastDate() time.Time {
	if e.EndDate != nil && e.Recurrence != recurrence.Single {
		return *e.EndDate
	}
	return e.StartDate
}

// StringList is stored as a JSON array
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return jsonValue(l)
}

func (l *StringList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// TicketDefinitions keeps the organizer's pricing so sessions can be re-materialized
type TicketDefinitions []sessions.TicketDefinition

func (d TicketDefinitions) Value() (driver.Value, error) {
	return jsonValue(d)
}

func (d *TicketDefinitions) Scan(src interface{}) error {
	return jsonScan(src, d)
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dest)
	}
}

// EventResponse is an event with a read-only ticket overview derived from its sessions
type EventResponse struct {
	Event
	SessionCount int                       `json:"sessionCount"`
	Tickets      []sessions.TicketOverview `json:"tickets"`
}

type CreateEventResponse struct {
	Event    *Event             `json:"event"`
	Sessions []sessions.Session `json:"sessions"`
}
