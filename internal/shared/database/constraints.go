package database

import (
	"fmt"

	"ticketly/internal/bookings"
	"ticketly/internal/sessions"

	"gorm.io/gorm"
)

// inventoryConstraints back the compare-and-set writes of the booking transaction.
// AutoMigrate only adds check constraints when it creates a table, so tables that
// predate a constraint get it here.
var inventoryConstraints = []struct {
	model interface{}
	name  string
}{
	{&sessions.Session{}, "chk_session_occupancy"},
	{&sessions.TicketType{}, "chk_ticket_available"},
	{&bookings.Booking{}, "chk_booking_status"},
}

// MigrateConstraints adds any missing named check constraint
func MigrateConstraints(db *gorm.DB) error {
	m := db.Migrator()
	for _, c := range inventoryConstraints {
		if m.HasConstraint(c.model, c.name) {
			continue
		}
		if err := m.CreateConstraint(c.model, c.name); err != nil {
			return fmt.Errorf("failed to create constraint %s: %w", c.name, err)
		}
	}
	return nil
}
