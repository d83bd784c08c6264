package sessions

import (
	"context"

	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"
	"ticketly/internal/shared/utils/ids"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"
)

// HoldStore is the seat hold backend, implemented by seats.HoldStore
type HoldStore interface {
	HoldSeats(ctx context.Context, sessionID, userID string, selected []seats.Selection) (*seats.Hold, error)
	ReleaseHold(ctx context.Context, holdID, userID string) (int, error)
	SessionHolders(ctx context.Context, sessionID string) (map[string]string, error)
}

type Service interface {
	ListSessions(ctx context.Context, eventID string) ([]Session, error)
	// GetSession returns the full seat map, with live holds shown as reserved.
	GetSession(ctx context.Context, eventID, sessionID string) (*Session, error)
	HoldSeats(ctx context.Context, eventID, sessionID, userID string, selected []seats.Selection) (*seats.Hold, error)
	ReleaseHold(ctx context.Context, holdID, userID string) (int, error)
}

type service struct {
	repo  Repository
	holds HoldStore
	cache cache.Service
	log   *logger.Logger
}

// NewService wires the read side of sessions. holds and cacheService may be nil.
func NewService(repo Repository, holds HoldStore, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		holds: holds,
		cache: cacheService,
		log:   logger.GetDefault().WithComponent("sessions"),
	}
}

func (s *service) ListSessions(ctx context.Context, eventID string) ([]Session, error) {
	id, err := ids.Parse("event", eventID)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		return s.repo.ListByEvent(ctx, id)
	}

	var list []Session
	err = s.cache.GetOrSet(ctx, cache.EventSessionsKey(id.String()), cache.TTLSessionDetail, func() (interface{}, error) {
		return s.repo.ListByEvent(ctx, id)
	}, &list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *service) GetSession(ctx context.Context, eventID, sessionID string) (*Session, error) {
	session, err := s.load(ctx, eventID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.holds == nil {
		return session, nil
	}

	holders, err := s.holds.SessionHolders(ctx, session.ID.String())
	if err != nil {
		// holds are advisory; the stored state is still correct
		s.log.WarnContext(ctx, "failed to read seat holds", "session_id", sessionID, "error", err)
		return session, nil
	}
	for i := range session.Seats {
		seat := &session.Seats[i]
		if _, held := holders[seat.Key()]; held && seat.IsAvailable() {
			seat.Status = seats.StatusReserved
		}
	}
	return session, nil
}

func (s *service) load(ctx context.Context, eventID, sessionID string) (*Session, error) {
	eid, err := ids.Parse("event", eventID)
	if err != nil {
		return nil, err
	}
	sid, err := ids.Parse("session", sessionID)
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		return s.repo.GetByID(ctx, eid, sid)
	}

	var session Session
	err = s.cache.GetOrSet(ctx, cache.SessionDetailKey(sid.String()), cache.TTLSessionDetail, func() (interface{}, error) {
		return s.repo.GetByID(ctx, eid, sid)
	}, &session)
	if err != nil {
		return nil, err
	}
	if session.EventID != eid {
		return nil, apperrors.NotFound("session %s not found for event %s", sid, eid)
	}
	return &session, nil
}

func (s *service) HoldSeats(ctx context.Context, eventID, sessionID, userID string, selected []seats.Selection) (*seats.Hold, error) {
	if s.holds == nil {
		return nil, apperrors.Conflict("seat holds are not available")
	}
	if len(selected) == 0 {
		return nil, apperrors.Configuration("no seats selected")
	}

	eid, err := ids.Parse("event", eventID)
	if err != nil {
		return nil, err
	}
	sid, err := ids.Parse("session", sessionID)
	if err != nil {
		return nil, err
	}

	// check against the database, not the cache, so a just-booked seat is refused
	session, err := s.repo.GetByID(ctx, eid, sid)
	if err != nil {
		return nil, err
	}
	index := make(map[string]seats.Status, len(session.Seats))
	for _, seat := range session.Seats {
		index[seat.Key()] = seat.Status
	}
	for _, sel := range selected {
		status, ok := index[sel.Key()]
		if !ok {
			return nil, apperrors.NotFound("seat %s not found in section %s", sel.SeatID, sel.Section)
		}
		if status == seats.StatusBooked {
			return nil, apperrors.Conflict("seat %s in section %s is already booked", sel.SeatID, sel.Section)
		}
	}

	return s.holds.HoldSeats(ctx, session.ID.String(), userID, selected)
}

func (s *service) ReleaseHold(ctx context.Context, holdID, userID string) (int, error) {
	if s.holds == nil {
		return 0, apperrors.NotFound("hold %s not found", holdID)
	}
	return s.holds.ReleaseHold(ctx, holdID, userID)
}
