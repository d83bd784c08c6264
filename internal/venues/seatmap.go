package venues

import (
	"strconv"

	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"
)

// BuildSeatMap expands a seating layout into the flat seat list every session starts from.
// Seats come out in section order, then row order, all available.
func BuildSeatMap(layout SeatingLayout) ([]seats.Seat, error) {
	if len(layout) == 0 {
		return nil, apperrors.Configuration("venue has no seating layout")
	}

	var out []seats.Seat
	seen := make(map[string]struct{})
	for _, section := range layout {
		for _, row := range section.Rows {
			for _, id := range rowSeatIDs(section, row) {
				seat := seats.Seat{SeatID: id, Section: section.Name, Status: seats.StatusAvailable}
				if _, dup := seen[seat.Key()]; dup {
					return nil, apperrors.Configuration("seat %s appears twice in section %s", id, section.Name)
				}
				seen[seat.Key()] = struct{}{}
				out = append(out, seat)
			}
		}
	}
	if len(out) == 0 {
		return nil, apperrors.Configuration("venue seating layout has no seats")
	}
	return out, nil
}

func rowSeatIDs(section Section, row Row) []string {
	if len(row.Seats) > 0 {
		return row.Seats
	}

	perRow := 1
	if n := len(section.Rows); n > 0 && section.SectionCapacity/n > 1 {
		perRow = section.SectionCapacity / n
	}

	ids := make([]string, perRow)
	for i := range ids {
		ids[i] = row.Label + strconv.Itoa(i+1)
	}
	return ids
}

// SectionSeatCounts returns how many seats each section contributes to the seat map
func SectionSeatCounts(seatMap []seats.Seat) map[seats.SectionName]int {
	counts := make(map[seats.SectionName]int)
	for _, s := range seatMap {
		counts[s.Section]++
	}
	return counts
}
