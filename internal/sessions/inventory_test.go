package sessions

import (
	"testing"

	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldSession has Gold seats A1..A5, B1..B5 at 100 and Silver seats C1..C2 at 50
func goldSession() *Session {
	s := &Session{ID: uuid.New(), EventID: uuid.New()}
	s.Tickets = []TicketType{
		{Type: "Gold", Price: 100, Available: 10, TotalSeats: 10},
		{Type: "Silver", Price: 50, Available: 2, TotalSeats: 2},
	}
	for _, id := range []string{"A1", "A2", "A3", "A4", "A5", "B1", "B2", "B3", "B4", "B5"} {
		s.Seats = append(s.Seats, SessionSeat{Seat: seats.Seat{SeatID: id, Section: "Gold", Status: seats.StatusAvailable}})
	}
	for _, id := range []string{"C1", "C2"} {
		s.Seats = append(s.Seats, SessionSeat{Seat: seats.Seat{SeatID: id, Section: "Silver", Status: seats.StatusAvailable}})
	}
	return s
}

func sel(section, id string) seats.Selection {
	return seats.Selection{SeatID: id, Section: seats.SectionName(section)}
}

func seatOf(s *Session, section, id string) seats.Seat {
	for _, seat := range s.Seats {
		if seat.Section == seats.SectionName(section) && seat.SeatID == id {
			return seat.Seat
		}
	}
	panic("seat not found")
}

func TestReserveGoldExample(t *testing.T) {
	s := goldSession()

	res, err := s.Reserve([]seats.Selection{sel("Gold", "A1"), sel("Gold", "A3")}, "u-1")
	require.NoError(t, err)

	assert.Equal(t, []ReservedSeat{
		{SeatID: "A1", Section: "Gold", Price: 100},
		{SeatID: "A3", Section: "Gold", Price: 100},
	}, res.Seats)
	assert.Equal(t, []TicketDebit{{Type: "Gold", Quantity: 2, UnitPrice: 100}}, res.Debits)
	assert.Equal(t, 200.0, res.Total())

	assert.Equal(t, 2, s.Occupancy)
	assert.Equal(t, 8, s.Ticket("Gold").Available)
	a1 := seatOf(s, "Gold", "A1")
	assert.Equal(t, seats.StatusBooked, a1.Status)
	require.NotNil(t, a1.User)
	assert.Equal(t, "u-1", *a1.User)
}

func TestReserveGroupsDebitsInFirstSeenOrder(t *testing.T) {
	s := goldSession()

	res, err := s.Reserve([]seats.Selection{sel("Silver", "C1"), sel("Gold", "B2"), sel("Silver", "C2")}, "u-1")
	require.NoError(t, err)

	assert.Equal(t, []TicketDebit{
		{Type: "Silver", Quantity: 2, UnitPrice: 50},
		{Type: "Gold", Quantity: 1, UnitPrice: 100},
	}, res.Debits)
	assert.Equal(t, 200.0, res.Total())
	assert.Equal(t, 0, s.Ticket("Silver").Available)
}

func TestReserveIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(s *Session)
		selected []seats.Selection
		wantErr  error
	}{
		{
			name:     "missing seat",
			selected: []seats.Selection{sel("Gold", "A1"), sel("Gold", "Z9")},
			wantErr:  apperrors.ErrNotFound,
		},
		{
			name:     "seat in wrong section",
			selected: []seats.Selection{sel("Silver", "A1")},
			wantErr:  apperrors.ErrNotFound,
		},
		{
			name: "already booked",
			prepare: func(s *Session) {
				_, err := s.Reserve([]seats.Selection{sel("Gold", "A2")}, "someone")
				if err != nil {
					panic(err)
				}
			},
			selected: []seats.Selection{sel("Gold", "A1"), sel("Gold", "A2")},
			wantErr:  apperrors.ErrConflict,
		},
		{
			name:     "duplicate selection",
			selected: []seats.Selection{sel("Gold", "A1"), sel("Gold", "A1")},
			wantErr:  apperrors.ErrConfiguration,
		},
		{
			name:     "empty selection",
			selected: nil,
			wantErr:  apperrors.ErrConfiguration,
		},
		{
			name:     "exhausted ticket type",
			prepare:  func(s *Session) { s.Ticket("Gold").Available = 1 },
			selected: []seats.Selection{sel("Gold", "A1"), sel("Gold", "A2")},
			wantErr:  apperrors.ErrConflict,
		},
		{
			name:     "missing ticket type",
			prepare:  func(s *Session) { s.Tickets = s.Tickets[:1] },
			selected: []seats.Selection{sel("Gold", "A1"), sel("Silver", "C1")},
			wantErr:  apperrors.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := goldSession()
			if tt.prepare != nil {
				tt.prepare(s)
			}
			occupancy := s.Occupancy
			gold := s.Ticket("Gold").Available

			_, err := s.Reserve(tt.selected, "u-1")
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, occupancy, s.Occupancy)
			assert.Equal(t, gold, s.Ticket("Gold").Available)
			assert.Equal(t, seats.StatusAvailable, seatOf(s, "Gold", "A1").Status)
		})
	}
}

func TestReleaseRestoresSession(t *testing.T) {
	s := goldSession()
	res, err := s.Reserve([]seats.Selection{sel("Gold", "A1"), sel("Silver", "C1")}, "u-1")
	require.NoError(t, err)

	require.NoError(t, s.Release(res, "u-1"))

	assert.Equal(t, 0, s.Occupancy)
	assert.Equal(t, 10, s.Ticket("Gold").Available)
	assert.Equal(t, 2, s.Ticket("Silver").Available)
	a1 := seatOf(s, "Gold", "A1")
	assert.Equal(t, seats.StatusAvailable, a1.Status)
	assert.Nil(t, a1.User)
}

func TestReleaseRejectsOtherHolder(t *testing.T) {
	s := goldSession()
	res, err := s.Reserve([]seats.Selection{sel("Gold", "A1")}, "u-1")
	require.NoError(t, err)

	err = s.Release(res, "u-2")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, seats.StatusBooked, seatOf(s, "Gold", "A1").Status)
	assert.Equal(t, 1, s.Occupancy)
}

func TestReleaseNeverExceedsTotalSeats(t *testing.T) {
	s := goldSession()
	res, err := s.Reserve([]seats.Selection{sel("Gold", "A1")}, "u-1")
	require.NoError(t, err)
	s.Ticket("Gold").Available = 10

	require.NoError(t, s.Release(res, "u-1"))
	assert.Equal(t, 10, s.Ticket("Gold").Available)
}
