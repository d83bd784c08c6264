package venues

import (
	"context"

	"ticketly/internal/shared/utils/ids"
	"ticketly/pkg/cache"
	"ticketly/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateVenue(ctx context.Context, req CreateVenueRequest, organizerID string) (*Venue, error)
	GetVenue(ctx context.Context, id string) (*Venue, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

// NewService builds the venue service. cache may be nil.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault().WithComponent("venues"),
	}
}

func (s *service) CreateVenue(ctx context.Context, req CreateVenueRequest, organizerID string) (*Venue, error) {
	// reject layouts that cannot produce a seat map before they are stored
	seatMap, err := BuildSeatMap(req.SeatingLayout)
	if err != nil {
		return nil, err
	}

	venue := &Venue{
		ID:            uuid.New(),
		Name:          req.Name,
		Capacity:      req.Capacity,
		Location:      req.Location,
		SeatingLayout: req.SeatingLayout,
		CreatedBy:     organizerID,
	}
	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, err
	}

	if len(seatMap) != venue.Capacity {
		s.log.InfoContext(ctx, "venue capacity differs from seat map",
			"venue_id", venue.ID.String(), "capacity", venue.Capacity, "seats", len(seatMap))
	}
	return venue, nil
}

func (s *service) GetVenue(ctx context.Context, id string) (*Venue, error) {
	venueID, err := ids.Parse("venue", id)
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		return s.repo.GetByID(ctx, venueID)
	}

	var venue Venue
	err = s.cache.GetOrSet(ctx, cache.VenueKey(id), cache.TTLVenue, func() (interface{}, error) {
		return s.repo.GetByID(ctx, venueID)
	}, &venue)
	if err != nil {
		return nil, err
	}
	return &venue, nil
}
