package events

import (
	"context"
	"time"

	"ticketly/internal/recurrence"
	"ticketly/internal/sessions"
	"ticketly/internal/shared/apperrors"
	"ticketly/internal/shared/utils/ids"
	"ticketly/internal/venues"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// VenueReader is the part of the venue service events depend on
type VenueReader interface {
	GetVenue(ctx context.Context, id string) (*venues.Venue, error)
}

// ReleaseScheduler announces ticket releases for newly created sessions
type ReleaseScheduler interface {
	ScheduleReleases(ctx context.Context, eventID uuid.UUID, sessions []sessions.Session) error
}

type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest, organizerID string) (*CreateEventResponse, error)
	GetEvent(ctx context.Context, id string) (*EventResponse, error)
	// MaterializeSessions re-runs session creation for an event; existing sessions are kept.
	MaterializeSessions(ctx context.Context, eventID, requesterID string) ([]sessions.Session, error)
	CancelEvent(ctx context.Context, eventID, requesterID string) (*Event, error)
	AdvanceStatuses(ctx context.Context) (started, completed int64, err error)
}

type service struct {
	repo         Repository
	sessionRepo  sessions.Repository
	tx           Transactor
	venues       VenueReader
	materializer *sessions.Materializer
	releases     ReleaseScheduler
	cache        cache.Service
	validate     *validator.Validate
	now          func() time.Time
	log          *logger.Logger
}

// Dependencies wires the event service. Releases and Cache are optional.
type Dependencies struct {
	Repo         Repository
	Sessions     sessions.Repository
	Tx           Transactor
	Venues       VenueReader
	Materializer *sessions.Materializer
	Releases     ReleaseScheduler
	Cache        cache.Service
}

func NewService(deps Dependencies) Service {
	return &service{
		repo:         deps.Repo,
		sessionRepo:  deps.Sessions,
		tx:           deps.Tx,
		venues:       deps.Venues,
		materializer: deps.Materializer,
		releases:     deps.Releases,
		cache:        deps.Cache,
		validate:     newValidator(),
		now:          time.Now,
		log:          logger.GetDefault().WithComponent("events"),
	}
}

func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest, organizerID string) (*CreateEventResponse, error) {
	rule, err := validateRequest(s.validate, req)
	if err != nil {
		return nil, err
	}
	if rule.Kind == recurrence.Single {
		rule.EndDate = nil
	}

	venue, err := s.venues.GetVenue(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}

	event := &Event{
		ID:               uuid.New(),
		Title:            req.Title,
		Description:      req.Description,
		Recurrence:       rule.Kind,
		StartDate:        recurrence.Date(rule.StartDate),
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		SelectedWeekdays: req.SelectedWeekdays,
		Tickets:          req.Tickets,
		Status:           StatusUpcoming,
		VenueID:          venue.ID,
		OrganizerID:      organizerID,
	}
	if rule.EndDate != nil {
		end := recurrence.Date(*rule.EndDate)
		event.EndDate = &end
	}
	event.StartingPrice = event.Plan().StartingPrice()

	var created []sessions.Session
	err = s.tx.WithTx(ctx, func(eventRepo Repository, sessionRepo sessions.Repository) error {
		if err := eventRepo.Create(ctx, event); err != nil {
			return err
		}
		created, err = s.materializer.WithRepository(sessionRepo).CreateSessionsForEvent(ctx, event.ID, event.Plan(), venue)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.LogEventCreated(ctx, event.ID.String(), organizerID, len(created))
	s.announce(ctx, event.ID, created)

	return &CreateEventResponse{Event: event, Sessions: created}, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*EventResponse, error) {
	eventID, err := ids.Parse("event", id)
	if err != nil {
		return nil, err
	}
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	list, err := s.sessionRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	overview, err := s.sessionRepo.TicketOverview(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &EventResponse{Event: *event, SessionCount: len(list), Tickets: overview}, nil
}

func (s *service) MaterializeSessions(ctx context.Context, eventID, requesterID string) ([]sessions.Session, error) {
	id, err := ids.Parse("event", eventID)
	if err != nil {
		return nil, err
	}
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && event.OrganizerID != requesterID {
		return nil, apperrors.Forbidden("event %s belongs to another organizer", id)
	}
	if event.Status == StatusCancelled {
		return nil, apperrors.Conflict("event %s is cancelled", id)
	}

	venue, err := s.venues.GetVenue(ctx, event.VenueID.String())
	if err != nil {
		return nil, err
	}

	var (
		result []sessions.Session
		fresh  bool
	)
	err = s.tx.WithTx(ctx, func(_ Repository, sessionRepo sessions.Repository) error {
		existing, err := sessionRepo.ListByEvent(ctx, id)
		if err != nil {
			return err
		}
		fresh = len(existing) == 0
		result, err = s.materializer.WithRepository(sessionRepo).CreateSessionsForEvent(ctx, id, event.Plan(), venue)
		return err
	})
	if err != nil {
		return nil, err
	}

	if fresh {
		s.invalidate(ctx, id)
		s.announce(ctx, id, result)
	}
	return result, nil
}

func (s *service) CancelEvent(ctx context.Context, eventID, requesterID string) (*Event, error) {
	id, err := ids.Parse("event", eventID)
	if err != nil {
		return nil, err
	}
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != requesterID {
		return nil, apperrors.Forbidden("event %s belongs to another organizer", id)
	}

	ok, err := s.repo.UpdateStatus(ctx, id, []Status{StatusUpcoming, StatusOngoing}, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("event %s is already %s", id, event.Status)
	}
	event.Status = StatusCancelled

	s.invalidate(ctx, id)
	return event, nil
}

func (s *service) AdvanceStatuses(ctx context.Context) (int64, int64, error) {
	return s.repo.AdvanceStatuses(ctx, recurrence.Date(s.now()))
}

func (s *service) invalidate(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.EventPattern(eventID.String())); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate event cache", "event_id", eventID.String(), "error", err)
	}
}

func (s *service) announce(ctx context.Context, eventID uuid.UUID, created []sessions.Session) {
	if s.releases == nil || len(created) == 0 {
		return
	}
	if err := s.releases.ScheduleReleases(ctx, eventID, created); err != nil {
		s.log.WithError(err).ErrorContext(ctx, "failed to schedule ticket releases", "event_id", eventID.String())
	}
}
