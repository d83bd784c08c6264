package database

import (
	"ticketly/internal/bookings"
	"ticketly/internal/events"
	"ticketly/internal/sessions"
	"ticketly/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&venues.Venue{},
		&events.Event{},
		&sessions.Session{},
		&sessions.TicketType{},
		&sessions.SessionSeat{},
		&bookings.Booking{},
		&bookings.BookedSeat{},
		&bookings.TicketSummary{},
	)
	if err != nil {
		return err
	}
	return MigrateConstraints(db)
}
