package sessions

import (
	"context"
	"errors"
	"fmt"

	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Inventory is the part of the store the booking transaction works against
type Inventory interface {
	// LockSession loads a session with its tickets and the selected seats, holding
	// a row lock on the session until the transaction ends.
	LockSession(ctx context.Context, eventID, sessionID uuid.UUID, selected []seats.Selection) (*Session, error)
	ApplyReservation(ctx context.Context, sessionID uuid.UUID, res *Reservation, userID string) error
	ApplyRelease(ctx context.Context, sessionID uuid.UUID, res *Reservation, userID string) error
}

type Repository interface {
	Inventory

	CreateBatch(ctx context.Context, sessions []Session) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Session, error)
	GetByID(ctx context.Context, eventID, sessionID uuid.UUID) (*Session, error)
	TicketOverview(ctx context.Context, eventID uuid.UUID) ([]TicketOverview, error)
}

// TicketOverview aggregates one ticket type across all sessions of an event
type TicketOverview struct {
	Type       seats.SectionName `json:"type"`
	MinPrice   float64           `json:"minPrice"`
	MaxPrice   float64           `json:"maxPrice"`
	Available  int               `json:"available"`
	TotalSeats int               `json:"totalSeats"`
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(ctx context.Context, sessions []Session) error {
	var (
		tickets  []TicketType
		seatRows []SessionSeat
	)
	for _, s := range sessions {
		tickets = append(tickets, s.Tickets...)
		seatRows = append(seatRows, s.Seats...)
	}

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).CreateInBatches(sessions, 100).Error; err != nil {
		return fmt.Errorf("failed to create sessions: %w", err)
	}
	if len(tickets) > 0 {
		if err := db.CreateInBatches(tickets, 200).Error; err != nil {
			return fmt.Errorf("failed to create session tickets: %w", err)
		}
	}
	if len(seatRows) > 0 {
		if err := db.CreateInBatches(seatRows, 1000).Error; err != nil {
			return fmt.Errorf("failed to create session seats: %w", err)
		}
	}
	return nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Session, error) {
	var sessions []Session
	err := r.db.WithContext(ctx).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("type") }).
		Where("event_id = ?", eventID).
		Order("date ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *repository) GetByID(ctx context.Context, eventID, sessionID uuid.UUID) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).
		Preload("Tickets").
		Preload("Seats", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND event_id = ?", sessionID, eventID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("session %s not found for event %s", sessionID, eventID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *repository) LockSession(ctx context.Context, eventID, sessionID uuid.UUID, selected []seats.Selection) (*Session, error) {
	db := r.db.WithContext(ctx)

	var session Session
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND event_id = ?", sessionID, eventID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("session %s not found for event %s", sessionID, eventID)
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}

	if err := db.Where("session_id = ?", sessionID).Find(&session.Tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to load session tickets: %w", err)
	}

	if len(selected) > 0 {
		err = db.Where("session_id = ? AND (section, seat_id) IN ?", sessionID, seatPairs(selected)).
			Find(&session.Seats).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load session seats: %w", err)
		}
	}
	return &session, nil
}

func (r *repository) ApplyReservation(ctx context.Context, sessionID uuid.UUID, res *Reservation, userID string) error {
	db := r.db.WithContext(ctx)

	result := db.Model(&SessionSeat{}).
		Where("session_id = ? AND status = ? AND (section, seat_id) IN ?", sessionID, seats.StatusAvailable, seatPairs(res.Selections())).
		Updates(map[string]interface{}{"status": seats.StatusBooked, "user_id": userID})
	if result.Error != nil {
		return fmt.Errorf("failed to book seats: %w", result.Error)
	}
	if int(result.RowsAffected) != len(res.Seats) {
		return apperrors.Conflict("seats changed while booking, %d of %d still available", result.RowsAffected, len(res.Seats))
	}

	for _, d := range res.Debits {
		result = db.Model(&TicketType{}).
			Where("session_id = ? AND type = ? AND available >= ?", sessionID, d.Type, d.Quantity).
			Update("available", gorm.Expr("available - ?", d.Quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to debit %s tickets: %w", d.Type, result.Error)
		}
		if result.RowsAffected != 1 {
			return apperrors.Conflict("not enough %s tickets left", d.Type)
		}
	}

	return r.adjustOccupancy(ctx, sessionID, len(res.Seats))
}

func (r *repository) ApplyRelease(ctx context.Context, sessionID uuid.UUID, res *Reservation, userID string) error {
	db := r.db.WithContext(ctx)

	result := db.Model(&SessionSeat{}).
		Where("session_id = ? AND status = ? AND user_id = ? AND (section, seat_id) IN ?", sessionID, seats.StatusBooked, userID, seatPairs(res.Selections())).
		Updates(map[string]interface{}{"status": seats.StatusAvailable, "user_id": nil})
	if result.Error != nil {
		return fmt.Errorf("failed to release seats: %w", result.Error)
	}
	if int(result.RowsAffected) != len(res.Seats) {
		return apperrors.Conflict("only %d of %d seats are still booked by this user", result.RowsAffected, len(res.Seats))
	}

	for _, d := range res.Debits {
		result = db.Model(&TicketType{}).
			Where("session_id = ? AND type = ?", sessionID, d.Type).
			Update("available", gorm.Expr("LEAST(available + ?, total_seats)", d.Quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to restore %s tickets: %w", d.Type, result.Error)
		}
		if result.RowsAffected != 1 {
			return apperrors.Configuration("session has no ticket type for section %s", d.Type)
		}
	}

	return r.adjustOccupancy(ctx, sessionID, -len(res.Seats))
}

func (r *repository) adjustOccupancy(ctx context.Context, sessionID uuid.UUID, delta int) error {
	err := r.db.WithContext(ctx).Model(&Session{}).
		Where("id = ?", sessionID).
		Update("occupancy", gorm.Expr("GREATEST(occupancy + ?, 0)", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to update occupancy: %w", err)
	}
	return nil
}

func (r *repository) TicketOverview(ctx context.Context, eventID uuid.UUID) ([]TicketOverview, error) {
	var overview []TicketOverview
	err := r.db.WithContext(ctx).
		Model(&TicketType{}).
		Select("session_tickets.type AS type, MIN(session_tickets.price) AS min_price, MAX(session_tickets.price) AS max_price, " +
			"SUM(session_tickets.available) AS available, SUM(session_tickets.total_seats) AS total_seats").
		Joins("JOIN sessions ON sessions.id = session_tickets.session_id").
		Where("sessions.event_id = ?", eventID).
		Group("session_tickets.type").
		Order("session_tickets.type").
		Scan(&overview).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tickets: %w", err)
	}
	return overview, nil
}

// seatPairs renders selections as (section, seat_id) tuples for an IN clause
func seatPairs(selected []seats.Selection) [][]interface{} {
	pairs := make([][]interface{}, len(selected))
	for i, s := range selected {
		pairs[i] = []interface{}{string(s.Section), s.SeatID}
	}
	return pairs
}
