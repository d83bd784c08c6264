package sessions

import (
	"context"
	"fmt"
	"time"

	"ticketly/internal/recurrence"
	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"
	"ticketly/internal/venues"
	"ticketly/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TicketDefinition prices one venue section. Capacity 0 takes the section's seat count.
type TicketDefinition struct {
	Type     seats.SectionName `json:"type" binding:"required"`
	Price    float64           `json:"price" binding:"min=0"`
	Capacity int               `json:"capacity" binding:"min=0"`
}

// Plan is everything about an event the materializer needs
type Plan struct {
	Rule      recurrence.Rule
	StartTime string
	EndTime   string
	Tickets   []TicketDefinition
}

// StartingPrice is the cheapest ticket of the plan
func (p Plan) StartingPrice() float64 {
	if len(p.Tickets) == 0 {
		return 0
	}
	lowest := p.Tickets[0].Price
	for _, t := range p.Tickets[1:] {
		lowest = min(lowest, t.Price)
	}
	return lowest
}

// Materializer turns an event plan into stored sessions
type Materializer struct {
	repo     Repository
	schedule recurrence.Schedule
	now      func() time.Time
	log      *logger.Logger
}

func NewMaterializer(repo Repository, schedule recurrence.Schedule) *Materializer {
	return &Materializer{
		repo:     repo,
		schedule: schedule,
		now:      time.Now,
		log:      logger.GetDefault().WithComponent("sessions"),
	}
}

// WithRepository returns a copy bound to repo, typically a transaction-scoped one
func (m *Materializer) WithRepository(repo Repository) *Materializer {
	cp := *m
	cp.repo = repo
	return &cp
}

// WithClock replaces the time source used for release dates
func (m *Materializer) WithClock(now func() time.Time) *Materializer {
	cp := *m
	cp.now = now
	return &cp
}

// CreateSessionsForEvent stores one session per recurrence date. When the event already
// has sessions they are returned unchanged.
func (m *Materializer) CreateSessionsForEvent(ctx context.Context, eventID uuid.UUID, plan Plan, venue *venues.Venue) ([]Session, error) {
	existing, err := m.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		m.log.LogSessionsMaterialized(ctx, eventID.String(), len(existing), 0, true)
		return existing, nil
	}

	built, err := m.Build(ctx, eventID, plan, venue.SeatingLayout)
	if err != nil {
		return nil, err
	}
	if len(built) == 0 {
		m.log.LogSessionsMaterialized(ctx, eventID.String(), 0, 0, false)
		return built, nil
	}

	if err := m.repo.CreateBatch(ctx, built); err != nil {
		return nil, err
	}
	m.log.LogSessionsMaterialized(ctx, eventID.String(), len(built), len(built[0].Seats), false)
	return built, nil
}

// Build computes the sessions of a plan without storing them. Every session gets its own
// seat list, built concurrently.
func (m *Materializer) Build(ctx context.Context, eventID uuid.UUID, plan Plan, layout venues.SeatingLayout) ([]Session, error) {
	template, err := venues.BuildSeatMap(layout)
	if err != nil {
		return nil, err
	}
	tickets, err := resolveTickets(plan.Tickets, layout, venues.SectionSeatCounts(template))
	if err != nil {
		return nil, err
	}

	dates, err := recurrence.Expand(plan.Rule)
	if err != nil {
		return nil, err
	}
	releases := m.schedule.ReleaseSchedule(dates, m.now())

	out := make([]Session, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seatMap, err := venues.BuildSeatMap(layout)
			if err != nil {
				return err
			}
			out[i] = newSession(eventID, date, releases[i], plan, tickets, seatMap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build sessions: %w", err)
	}
	return out, nil
}

func newSession(eventID uuid.UUID, date, release time.Time, plan Plan, tickets []TicketDefinition, seatMap []seats.Seat) Session {
	s := Session{
		ID:          uuid.New(),
		EventID:     eventID,
		Date:        date,
		StartTime:   plan.StartTime,
		EndTime:     plan.EndTime,
		ReleaseDate: release,
		Tickets:     make([]TicketType, len(tickets)),
		Seats:       make([]SessionSeat, len(seatMap)),
	}
	for i, t := range tickets {
		s.Tickets[i] = TicketType{
			ID:         uuid.New(),
			SessionID:  s.ID,
			Type:       t.Type,
			Price:      t.Price,
			Available:  t.Capacity,
			TotalSeats: t.Capacity,
		}
	}
	for i, seat := range seatMap {
		s.Seats[i] = SessionSeat{ID: uuid.New(), SessionID: s.ID, Position: i, Seat: seat}
	}
	return s
}

// resolveTickets checks the definitions against the layout: one definition per section
// that has seats, no unknown sections, and capacity equal to the section's seat count.
func resolveTickets(defs []TicketDefinition, layout venues.SeatingLayout, counts map[seats.SectionName]int) ([]TicketDefinition, error) {
	resolved := make([]TicketDefinition, 0, len(defs))
	defined := make(map[seats.SectionName]bool, len(defs))

	for _, def := range defs {
		if _, ok := layout.Section(def.Type); !ok {
			return nil, apperrors.Configuration("ticket type %s does not match any venue section", def.Type)
		}
		if defined[def.Type] {
			return nil, apperrors.Configuration("ticket type %s is defined twice", def.Type)
		}
		defined[def.Type] = true

		if def.Price < 0 {
			return nil, apperrors.Configuration("ticket type %s has a negative price", def.Type)
		}
		seatCount := counts[def.Type]
		if seatCount == 0 {
			return nil, apperrors.Configuration("ticket type %s names a section without seats", def.Type)
		}
		if def.Capacity == 0 {
			def.Capacity = seatCount
		}
		if def.Capacity != seatCount {
			return nil, apperrors.Configuration("ticket type %s has capacity %d but section has %d seats", def.Type, def.Capacity, seatCount)
		}
		resolved = append(resolved, def)
	}

	for _, section := range layout {
		if counts[section.Name] > 0 && !defined[section.Name] {
			return nil, apperrors.Configuration("section %s has no ticket type", section.Name)
		}
	}
	return resolved, nil
}
