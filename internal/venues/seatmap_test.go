package venues

import (
	"testing"

	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatIDs(list []seats.Seat) []string {
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = string(s.Section) + ":" + s.SeatID
	}
	return ids
}

func TestBuildSeatMap(t *testing.T) {
	tests := []struct {
		name   string
		layout SeatingLayout
		want   []string
	}{
		{
			name: "synthesized rows split capacity evenly",
			layout: SeatingLayout{
				{Name: "Gold", SectionCapacity: 10, Rows: []Row{{Label: "A"}, {Label: "B"}}},
			},
			want: []string{
				"Gold:A1", "Gold:A2", "Gold:A3", "Gold:A4", "Gold:A5",
				"Gold:B1", "Gold:B2", "Gold:B3", "Gold:B4", "Gold:B5",
			},
		},
		{
			name: "floor of capacity per row",
			layout: SeatingLayout{
				{Name: "Silver", SectionCapacity: 7, Rows: []Row{{Label: "C"}, {Label: "D"}}},
			},
			want: []string{"Silver:C1", "Silver:C2", "Silver:C3", "Silver:D1", "Silver:D2", "Silver:D3"},
		},
		{
			name: "at least one seat per row",
			layout: SeatingLayout{
				{Name: "Box", SectionCapacity: 1, Rows: []Row{{Label: "X"}, {Label: "Y"}}},
			},
			want: []string{"Box:X1", "Box:Y1"},
		},
		{
			name: "explicit seats win and order is section then row",
			layout: SeatingLayout{
				{Name: "VIP", SectionCapacity: 100, Rows: []Row{{Label: "V", Seats: []string{"V9", "V3"}}}},
				{Name: "Gold", SectionCapacity: 2, Rows: []Row{{Label: "A"}}},
			},
			want: []string{"VIP:V9", "VIP:V3", "Gold:A1", "Gold:A2"},
		},
		{
			name: "same seat id in different sections is allowed",
			layout: SeatingLayout{
				{Name: "Left", SectionCapacity: 1, Rows: []Row{{Label: "A"}}},
				{Name: "Right", SectionCapacity: 1, Rows: []Row{{Label: "A"}}},
			},
			want: []string{"Left:A1", "Right:A1"},
		},
		{
			name: "section without rows emits nothing",
			layout: SeatingLayout{
				{Name: "Empty", SectionCapacity: 50},
				{Name: "Gold", SectionCapacity: 1, Rows: []Row{{Label: "A"}}},
			},
			want: []string{"Gold:A1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSeatMap(tt.layout)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seatIDs(got))
			for _, s := range got {
				assert.Equal(t, seats.StatusAvailable, s.Status)
				assert.Nil(t, s.User)
			}
		})
	}
}

func TestBuildSeatMapRejectsBadLayouts(t *testing.T) {
	_, err := BuildSeatMap(nil)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	_, err = BuildSeatMap(SeatingLayout{})
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	_, err = BuildSeatMap(SeatingLayout{
		{Name: "Gold", Rows: []Row{{Label: "A", Seats: []string{"A1", "A1"}}}},
	})
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	// sections without rows yield no seats at all
	_, err = BuildSeatMap(SeatingLayout{
		{Name: "Gold", SectionCapacity: 10},
		{Name: "Silver", SectionCapacity: 5, Rows: []Row{}},
	})
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestBuildSeatMapIsIndependentPerCall(t *testing.T) {
	layout := SeatingLayout{{Name: "Gold", SectionCapacity: 2, Rows: []Row{{Label: "A"}}}}

	first, err := BuildSeatMap(layout)
	require.NoError(t, err)
	second, err := BuildSeatMap(layout)
	require.NoError(t, err)

	user := "u-1"
	first[0].Status = seats.StatusBooked
	first[0].User = &user

	assert.Equal(t, seats.StatusAvailable, second[0].Status)
	assert.Nil(t, second[0].User)
}

func TestSectionSeatCounts(t *testing.T) {
	seatMap, err := BuildSeatMap(SeatingLayout{
		{Name: "Gold", SectionCapacity: 4, Rows: []Row{{Label: "A"}, {Label: "B"}}},
		{Name: "Silver", SectionCapacity: 3, Rows: []Row{{Label: "C"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[seats.SectionName]int{"Gold": 4, "Silver": 3}, SectionSeatCounts(seatMap))
}
