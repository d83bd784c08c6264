// Package sessionstest provides an in-memory sessions.Repository for tests of
// packages that sit on top of session inventory.
package sessionstest

import (
	"context"
	"sort"
	"sync"

	"ticketly/internal/seats"
	"ticketly/internal/sessions"
	"ticketly/internal/shared/apperrors"

	"github.com/google/uuid"
)

// Store keeps sessions in memory and applies inventory changes with the same
// compare-and-set rules as the database repository.
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	sessions map[uuid.UUID]*sessions.Session

	// Creates counts CreateBatch calls that stored at least one session
	Creates int
}

var _ sessions.Repository = (*Store)(nil)

func New() *Store {
	return &Store{sessions: make(map[uuid.UUID]*sessions.Session)}
}

// WithinTx runs fn with transactions serialized; state is restored when fn fails.
func (s *Store) WithinTx(fn func(repo sessions.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := make(map[uuid.UUID]*sessions.Session, len(s.sessions))
	for id, sess := range s.sessions {
		snapshot[id] = clone(sess)
	}
	creates := s.Creates
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.sessions = snapshot
		s.Creates = creates
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) CreateBatch(_ context.Context, list []sessions.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range list {
		for _, existing := range s.sessions {
			if existing.EventID == sess.EventID && existing.Date.Equal(sess.Date) {
				return apperrors.Conflict("session for %s already exists", sess.Date.Format("2006-01-02"))
			}
		}
	}
	for i := range list {
		s.sessions[list[i].ID] = clone(&list[i])
	}
	if len(list) > 0 {
		s.Creates++
	}
	return nil
}

func (s *Store) ListByEvent(_ context.Context, eventID uuid.UUID) ([]sessions.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []sessions.Session
	for _, sess := range s.sessions {
		if sess.EventID == eventID {
			cp := clone(sess)
			cp.Seats = nil
			out = append(out, *cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) GetByID(_ context.Context, eventID, sessionID uuid.UUID) (*sessions.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.find(eventID, sessionID)
	if err != nil {
		return nil, err
	}
	return clone(sess), nil
}

func (s *Store) TicketOverview(_ context.Context, eventID uuid.UUID) ([]sessions.TicketOverview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byType := make(map[seats.SectionName]*sessions.TicketOverview)
	for _, sess := range s.sessions {
		if sess.EventID != eventID {
			continue
		}
		for _, t := range sess.Tickets {
			o, ok := byType[t.Type]
			if !ok {
				o = &sessions.TicketOverview{Type: t.Type, MinPrice: t.Price, MaxPrice: t.Price}
				byType[t.Type] = o
			}
			o.MinPrice = min(o.MinPrice, t.Price)
			o.MaxPrice = max(o.MaxPrice, t.Price)
			o.Available += t.Available
			o.TotalSeats += t.TotalSeats
		}
	}

	out := make([]sessions.TicketOverview, 0, len(byType))
	for _, o := range byType {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// LockSession returns the session with its tickets and only the selected seats
func (s *Store) LockSession(_ context.Context, eventID, sessionID uuid.UUID, selected []seats.Selection) (*sessions.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.find(eventID, sessionID)
	if err != nil {
		return nil, err
	}
	cp := clone(sess)

	wanted := make(map[string]bool, len(selected))
	for _, sel := range selected {
		wanted[sel.Key()] = true
	}
	cp.Seats = cp.Seats[:0]
	for _, seat := range sess.Seats {
		if wanted[seat.Key()] {
			cp.Seats = append(cp.Seats, cloneSeat(seat))
		}
	}
	return cp, nil
}

func (s *Store) ApplyReservation(_ context.Context, sessionID uuid.UUID, res *sessions.Reservation, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return apperrors.NotFound("session %s not found", sessionID)
	}

	matched := s.matching(sess, res, func(seat *sessions.SessionSeat) bool {
		return seat.Status == seats.StatusAvailable
	})
	if len(matched) != len(res.Seats) {
		return apperrors.Conflict("seats changed while booking, %d of %d still available", len(matched), len(res.Seats))
	}
	for _, d := range res.Debits {
		t := sess.Ticket(d.Type)
		if t == nil || t.Available < d.Quantity {
			return apperrors.Conflict("not enough %s tickets left", d.Type)
		}
	}

	for _, seat := range matched {
		holder := userID
		seat.Status = seats.StatusBooked
		seat.User = &holder
	}
	for _, d := range res.Debits {
		sess.Ticket(d.Type).Available -= d.Quantity
	}
	sess.Occupancy += len(res.Seats)
	return nil
}

func (s *Store) ApplyRelease(_ context.Context, sessionID uuid.UUID, res *sessions.Reservation, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return apperrors.NotFound("session %s not found", sessionID)
	}

	matched := s.matching(sess, res, func(seat *sessions.SessionSeat) bool {
		return seat.Status == seats.StatusBooked && seat.User != nil && *seat.User == userID
	})
	if len(matched) != len(res.Seats) {
		return apperrors.Conflict("only %d of %d seats are still booked by this user", len(matched), len(res.Seats))
	}
	for _, d := range res.Debits {
		if sess.Ticket(d.Type) == nil {
			return apperrors.Configuration("session has no ticket type for section %s", d.Type)
		}
	}

	for _, seat := range matched {
		seat.Status = seats.StatusAvailable
		seat.User = nil
	}
	for _, d := range res.Debits {
		t := sess.Ticket(d.Type)
		t.Available = min(t.Available+d.Quantity, t.TotalSeats)
	}
	sess.Occupancy = max(sess.Occupancy-len(res.Seats), 0)
	return nil
}

// Seat returns a copy of one stored seat, for assertions
func (s *Store) Seat(sessionID uuid.UUID, section seats.SectionName, seatID string) (seats.Seat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return seats.Seat{}, false
	}
	for _, seat := range sess.Seats {
		if seat.Section == section && seat.SeatID == seatID {
			return cloneSeat(seat).Seat, true
		}
	}
	return seats.Seat{}, false
}

func (s *Store) find(eventID, sessionID uuid.UUID) (*sessions.Session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.EventID != eventID {
		return nil, apperrors.NotFound("session %s not found for event %s", sessionID, eventID)
	}
	return sess, nil
}

func (s *Store) matching(sess *sessions.Session, res *sessions.Reservation, pred func(*sessions.SessionSeat) bool) []*sessions.SessionSeat {
	wanted := make(map[string]bool, len(res.Seats))
	for _, rs := range res.Seats {
		wanted[seats.Key(rs.Section, rs.SeatID)] = true
	}
	var out []*sessions.SessionSeat
	for i := range sess.Seats {
		seat := &sess.Seats[i]
		if wanted[seat.Key()] && pred(seat) {
			out = append(out, seat)
		}
	}
	return out
}

func clone(sess *sessions.Session) *sessions.Session {
	cp := *sess
	cp.Tickets = append([]sessions.TicketType(nil), sess.Tickets...)
	cp.Seats = make([]sessions.SessionSeat, len(sess.Seats))
	for i, seat := range sess.Seats {
		cp.Seats[i] = cloneSeat(seat)
	}
	return &cp
}

func cloneSeat(seat sessions.SessionSeat) sessions.SessionSeat {
	if seat.User != nil {
		user := *seat.User
		seat.User = &user
	}
	return seat
}
