package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"ticketly/internal/notifications"
	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"
	"ticketly/internal/shared/utils/ids"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"

	"github.com/google/uuid"
)

// HoldChecker is the part of the seat hold store bookings consult
type HoldChecker interface {
	Holders(ctx context.Context, sessionID string, selected []seats.Selection) (map[string]string, error)
	DropSeats(ctx context.Context, sessionID, userID string, selected []seats.Selection) error
}

type Service interface {
	CreateBooking(ctx context.Context, eventID, sessionID string, selected []seats.Selection, userID string) (*Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID string) error
	GetBooking(ctx context.Context, bookingID, userID string) (*Booking, error)
	ListUserBookings(ctx context.Context, userID string, query ListQuery) (*BookingListResponse, error)
}

// Dependencies wires the booking service. Holds, Cache and Publisher are optional.
type Dependencies struct {
	Repo      Repository
	Tx        Transactor
	Holds     HoldChecker
	Cache     cache.Service
	Publisher notifications.Publisher
	MaxSeats  int
}

type service struct {
	repo      Repository
	tx        Transactor
	holds     HoldChecker
	cache     cache.Service
	publisher notifications.Publisher
	maxSeats  int
	now       func() time.Time
	log       *logger.Logger
}

func NewService(deps Dependencies) Service {
	return &service{
		repo:      deps.Repo,
		tx:        deps.Tx,
		holds:     deps.Holds,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		maxSeats:  deps.MaxSeats,
		now:       time.Now,
		log:       logger.GetDefault().WithComponent("bookings"),
	}
}

// CreateBooking books every selected seat of one session for userID, or none of them
func (s *service) CreateBooking(ctx context.Context, eventID, sessionID string, selected []seats.Selection, userID string) (*Booking, error) {
	eid, err := ids.Parse("event", eventID)
	if err != nil {
		return nil, err
	}
	sid, err := ids.Parse("session", sessionID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, apperrors.Configuration("no seats selected")
	}
	if s.maxSeats > 0 && len(selected) > s.maxSeats {
		return nil, apperrors.Configuration("at most %d seats can be booked at once", s.maxSeats)
	}

	var booking *Booking
	err = s.tx.WithTx(ctx, func(r Repos) error {
		event, err := r.Events.GetByID(ctx, eid)
		if err != nil {
			return err
		}
		if !event.Status.AcceptsBookings() {
			return apperrors.Conflict("event %s is %s", eid, event.Status)
		}

		session, err := r.Sessions.LockSession(ctx, eid, sid, selected)
		if err != nil {
			return err
		}
		res, err := session.Reserve(selected, userID)
		if err != nil {
			return err
		}
		if err := s.checkHolds(ctx, sid, selected, userID); err != nil {
			return err
		}
		if err := r.Sessions.ApplyReservation(ctx, sid, res, userID); err != nil {
			return err
		}

		now := s.now()
		ref, err := generateBookingReference(now)
		if err != nil {
			return fmt.Errorf("failed to generate booking reference: %w", err)
		}
		booking = newBooking(eid, sid, userID, ref, res, now)
		return r.Bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	if s.holds != nil {
		if err := s.holds.DropSeats(ctx, sid.String(), userID, selected); err != nil {
			s.log.WarnContext(ctx, "failed to drop seat holds", "session_id", sid.String(), "error", err)
		}
	}
	s.invalidate(ctx, booking)
	s.publish(ctx, notifications.MessageTypeBookingConfirmed, booking)
	s.log.LogBookingCreated(ctx, booking.ID.String(), sid.String(), userID, len(booking.Seats))

	return booking, nil
}

// checkHolds refuses seats another user holds
func (s *service) checkHolds(ctx context.Context, sessionID uuid.UUID, selected []seats.Selection, userID string) error {
	if s.holds == nil {
		return nil
	}
	holders, err := s.holds.Holders(ctx, sessionID.String(), selected)
	if err != nil {
		return err
	}
	for _, sel := range selected {
		if holder, ok := holders[sel.Key()]; ok && holder != userID {
			return apperrors.Conflict("seat %s in section %s is held by another user", sel.SeatID, sel.Section)
		}
	}
	return nil
}

// CancelBooking gives the booked seats and tickets back to the session
func (s *service) CancelBooking(ctx context.Context, bookingID, userID string) error {
	id, err := ids.Parse("booking", bookingID)
	if err != nil {
		return err
	}

	var booking *Booking
	err = s.tx.WithTx(ctx, func(r Repos) error {
		b, err := r.Bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanBeCancelled() {
			return apperrors.NotFound("booking %s not found or already cancelled", id)
		}
		if b.UserID != userID {
			return apperrors.Forbidden("booking %s belongs to another user", id)
		}

		if err := r.Sessions.ApplyRelease(ctx, b.SessionID, b.Reservation(), userID); err != nil {
			return err
		}

		now := s.now()
		ok, err := r.Bookings.MarkCancelled(ctx, id, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound("booking %s not found or already cancelled", id)
		}
		b.Status = StatusCancelled
		b.CancelledAt = &now
		booking = b
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, booking)
	s.publish(ctx, notifications.MessageTypeBookingCancelled, booking)
	s.log.LogBookingCancelled(ctx, booking.ID.String(), booking.SessionID.String(), userID)
	return nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, userID string) (*Booking, error) {
	id, err := ids.Parse("booking", bookingID)
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, apperrors.Forbidden("booking %s belongs to another user", id)
	}
	return booking, nil
}

func (s *service) ListUserBookings(ctx context.Context, userID string, query ListQuery) (*BookingListResponse, error) {
	query = query.withDefaults()
	list, total, err := s.repo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Booking{}
	}
	return &BookingListResponse{
		Bookings:   list,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}

func (s *service) invalidate(ctx context.Context, b *Booking) {
	if s.cache == nil {
		return
	}
	keys := []string{
		cache.SessionDetailKey(b.SessionID.String()),
		cache.EventSessionsKey(b.EventID.String()),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate session cache", "session_id", b.SessionID.String(), "error", err)
	}
}

func (s *service) publish(ctx context.Context, messageType notifications.MessageType, b *Booking) {
	if s.publisher == nil {
		return
	}
	at := b.UpdatedAt
	if b.CancelledAt != nil {
		at = *b.CancelledAt
	}
	message := notifications.NewMessageBuilder(messageType).
		WithKey(b.SessionID.String()).
		WithPayload(notifications.BookingPayload{
			BookingID:   b.ID.String(),
			BookingRef:  b.BookingRef,
			UserID:      b.UserID,
			EventID:     b.EventID.String(),
			SessionID:   b.SessionID.String(),
			SeatCount:   len(b.Seats),
			TotalAmount: b.TotalAmount,
			Status:      string(b.Status),
			At:          at,
		}).
		Build()
	if err := s.publisher.Publish(ctx, message); err != nil {
		s.log.WithError(err).ErrorContext(ctx, "failed to publish booking event", "type", string(messageType), "booking_id", b.ID.String())
	}
}

// generateBookingReference returns TKT-YYYYMMDD- followed by 6 random uppercase letters
func generateBookingReference(now time.Time) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}
	return fmt.Sprintf("TKT-%s-%s", now.Format("20060102"), string(randomPart)), nil
}
