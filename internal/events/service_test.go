package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"ticketly/internal/recurrence"
	"ticketly/internal/sessions"
	"ticketly/internal/sessions/sessionstest"
	"ticketly/internal/shared/apperrors"
	"ticketly/internal/venues"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]Event
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{events: make(map[uuid.UUID]Event)}
}

func (r *memoryRepository) Create(_ context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = *event
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, apperrors.NotFound("event %s not found", id)
	}
	return &e, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, from []Status, to Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if e.Status == s {
			e.Status = to
			r.events[id] = e
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) AdvanceStatuses(_ context.Context, today time.Time) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var started, completed int64
	for id, e := range r.events {
		switch {
		case e.Status.AcceptsBookings() && e.LastDate().Before(today):
			e.Status = StatusCompleted
			completed++
		case e.Status == StatusUpcoming && !e.StartDate.After(today):
			e.Status = StatusOngoing
			started++
		default:
			continue
		}
		r.events[id] = e
	}
	return started, completed, nil
}

type memoryTransactor struct {
	events *memoryRepository
	store  *sessionstest.Store
}

func (t memoryTransactor) WithTx(_ context.Context, fn func(Repository, sessions.Repository) error) error {
	return t.store.WithinTx(func(repo sessions.Repository) error {
		t.events.mu.Lock()
		snapshot := make(map[uuid.UUID]Event, len(t.events.events))
		for id, e := range t.events.events {
			snapshot[id] = e
		}
		t.events.mu.Unlock()

		if err := fn(t.events, repo); err != nil {
			t.events.mu.Lock()
			t.events.events = snapshot
			t.events.mu.Unlock()
			return err
		}
		return nil
	})
}

type venueReader map[string]*venues.Venue

func (v venueReader) GetVenue(_ context.Context, id string) (*venues.Venue, error) {
	venue, ok := v[id]
	if !ok {
		return nil, apperrors.NotFound("venue %s not found", id)
	}
	return venue, nil
}

type recordingScheduler struct {
	calls    int
	sessions []sessions.Session
}

func (s *recordingScheduler) ScheduleReleases(_ context.Context, _ uuid.UUID, list []sessions.Session) error {
	s.calls++
	s.sessions = append(s.sessions, list...)
	return nil
}

type fixture struct {
	svc       Service
	events    *memoryRepository
	store     *sessionstest.Store
	scheduler *recordingScheduler
	venue     *venues.Venue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	venue := &venues.Venue{
		ID:       uuid.New(),
		Name:     "Riverside Hall",
		Capacity: 12,
		SeatingLayout: venues.SeatingLayout{
			{Name: "Gold", SectionCapacity: 10, Rows: []venues.Row{{Label: "A"}, {Label: "B"}}},
			{Name: "Silver", SectionCapacity: 2, Rows: []venues.Row{{Label: "C"}}},
		},
	}
	events := newMemoryRepository()
	store := sessionstest.New()
	scheduler := &recordingScheduler{}
	clock := func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }

	svc := NewService(Dependencies{
		Repo:         events,
		Sessions:     store,
		Tx:           memoryTransactor{events: events, store: store},
		Venues:       venueReader{venue.ID.String(): venue},
		Materializer: sessions.NewMaterializer(store, recurrence.DefaultSchedule()).WithClock(clock),
		Releases:     scheduler,
	})
	svc.(*service).now = clock

	return &fixture{svc: svc, events: events, store: store, scheduler: scheduler, venue: venue}
}

func (f *fixture) weeklyRequest() CreateEventRequest {
	return CreateEventRequest{
		Title:            "Summer Jazz Nights",
		Recurrence:       recurrence.Weekly,
		StartDate:        "2025-06-01",
		EndDate:          "2025-06-30",
		StartTime:        "19:00",
		EndTime:          "21:30",
		SelectedWeekdays: []string{"Saturday", "Sunday"},
		VenueID:          f.venue.ID.String(),
		Tickets: []sessions.TicketDefinition{
			{Type: "Gold", Price: 100},
			{Type: "Silver", Price: 50},
		},
	}
}

func TestCreateEventWeekly(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateEvent(context.Background(), f.weeklyRequest(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, StatusUpcoming, result.Event.Status)
	assert.Equal(t, 50.0, result.Event.StartingPrice)
	assert.Equal(t, "org-1", result.Event.OrganizerID)
	require.NotNil(t, result.Event.EndDate)
	require.Len(t, result.Sessions, 9)

	stored, err := f.events.GetByID(context.Background(), result.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Event.Title, stored.Title)

	assert.Equal(t, 1, f.scheduler.calls)
	assert.Len(t, f.scheduler.sessions, 9)
}

func TestCreateEventSingleIgnoresEndDate(t *testing.T) {
	f := newFixture(t)
	req := f.weeklyRequest()
	req.Recurrence = recurrence.Single
	req.SelectedWeekdays = nil

	result, err := f.svc.CreateEvent(context.Background(), req, "org-1")
	require.NoError(t, err)

	assert.Nil(t, result.Event.EndDate)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "2025-06-01", result.Sessions[0].Date.Format(time.DateOnly))
}

func TestCreateEventValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CreateEventRequest)
	}{
		{"end time before start time", func(r *CreateEventRequest) { r.EndTime = "18:00" }},
		{"malformed time", func(r *CreateEventRequest) { r.StartTime = "25:00" }},
		{"weekly without weekdays", func(r *CreateEventRequest) { r.SelectedWeekdays = nil }},
		{"unknown weekday", func(r *CreateEventRequest) { r.SelectedWeekdays = []string{"Funday"} }},
		{"weekdays on multi-day event", func(r *CreateEventRequest) { r.Recurrence = recurrence.MultiDay }},
		{"missing end date", func(r *CreateEventRequest) { r.EndDate = "" }},
		{"end date before start date", func(r *CreateEventRequest) { r.EndDate = "2025-05-01" }},
		{"no tickets", func(r *CreateEventRequest) { r.Tickets = nil }},
		{"unknown section", func(r *CreateEventRequest) {
			r.Tickets = append(r.Tickets, sessions.TicketDefinition{Type: "Platinum", Price: 500})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.weeklyRequest()
			tt.modify(&req)

			_, err := f.svc.CreateEvent(context.Background(), req, "org-1")
			assert.ErrorIs(t, err, apperrors.ErrConfiguration)
			assert.Empty(t, f.events.events, "nothing is stored")
			assert.Zero(t, f.store.Creates)
			assert.Zero(t, f.scheduler.calls)
		})
	}
}

func TestCreateEventUnknownVenue(t *testing.T) {
	f := newFixture(t)
	req := f.weeklyRequest()
	req.VenueID = uuid.NewString()

	_, err := f.svc.CreateEvent(context.Background(), req, "org-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetEvent(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEvent(context.Background(), f.weeklyRequest(), "org-1")
	require.NoError(t, err)

	got, err := f.svc.GetEvent(context.Background(), created.Event.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 9, got.SessionCount)
	require.Len(t, got.Tickets, 2)
	assert.Equal(t, "Gold", string(got.Tickets[0].Type))
	assert.Equal(t, 90, got.Tickets[0].TotalSeats)
	assert.Equal(t, 90, got.Tickets[0].Available)

	_, err = f.svc.GetEvent(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	_, err = f.svc.GetEvent(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMaterializeSessionsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEvent(context.Background(), f.weeklyRequest(), "org-1")
	require.NoError(t, err)

	again, err := f.svc.MaterializeSessions(context.Background(), created.Event.ID.String(), "org-1")
	require.NoError(t, err)

	require.Len(t, again, len(created.Sessions))
	for i := range again {
		assert.Equal(t, created.Sessions[i].ID, again[i].ID)
	}
	assert.Equal(t, 1, f.store.Creates)
	assert.Equal(t, 1, f.scheduler.calls, "existing sessions are not announced again")
}

func TestMaterializeSessionsChecksOwnerAndStatus(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEvent(context.Background(), f.weeklyRequest(), "org-1")
	require.NoError(t, err)
	id := created.Event.ID.String()

	_, err = f.svc.MaterializeSessions(context.Background(), id, "org-2")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.MaterializeSessions(context.Background(), id, "")
	assert.NoError(t, err, "admins materialize any event")

	_, err = f.svc.CancelEvent(context.Background(), id, "org-1")
	require.NoError(t, err)

	_, err = f.svc.MaterializeSessions(context.Background(), id, "org-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCancelEvent(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEvent(context.Background(), f.weeklyRequest(), "org-1")
	require.NoError(t, err)
	id := created.Event.ID.String()

	_, err = f.svc.CancelEvent(context.Background(), id, "org-2")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	event, err := f.svc.CancelEvent(context.Background(), id, "org-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, event.Status)

	_, err = f.svc.CancelEvent(context.Background(), id, "org-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAdvanceStatuses(t *testing.T) {
	f := newFixture(t)
	req := f.weeklyRequest()
	req.StartDate, req.EndDate = "2024-12-01", "2024-12-31"
	past, err := f.svc.CreateEvent(context.Background(), req, "org-1")
	require.NoError(t, err)

	req.StartDate, req.EndDate = "2024-12-28", "2025-01-31"
	running, err := f.svc.CreateEvent(context.Background(), req, "org-1")
	require.NoError(t, err)

	future, err := f.svc.CreateEvent(context.Background(), f.weeklyRequest(), "org-1")
	require.NoError(t, err)

	started, completed, err := f.svc.AdvanceStatuses(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, started)
	assert.EqualValues(t, 1, completed)

	for id, want := range map[uuid.UUID]Status{
		past.Event.ID:    StatusCompleted,
		running.Event.ID: StatusOngoing,
		future.Event.ID:  StatusUpcoming,
	} {
		e, err := f.events.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, e.Status)
	}
}
