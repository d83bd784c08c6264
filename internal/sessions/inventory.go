package sessions

import (
	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"
)

// Reserve books the selected seats for userID on the in-memory session. Either every seat
// is taken and the matching tickets debited, or the session is left untouched.
func (s *Session) Reserve(selected []seats.Selection, userID string) (*Reservation, error) {
	if len(selected) == 0 {
		return nil, apperrors.Configuration("no seats selected")
	}
	if dup, ok := seats.DuplicateSelection(selected); ok {
		return nil, apperrors.Configuration("seat %s in section %s selected twice", dup.SeatID, dup.Section)
	}

	idx := s.seatIndex()
	for _, sel := range selected {
		i, ok := idx[sel.Key()]
		if !ok {
			return nil, apperrors.NotFound("seat %s not found in section %s", sel.SeatID, sel.Section)
		}
		if s.Seats[i].Status == seats.StatusBooked {
			return nil, apperrors.Conflict("seat %s in section %s is already booked", sel.SeatID, sel.Section)
		}
	}

	debits := groupBySection(selected)
	for i, d := range debits {
		ticket := s.Ticket(d.Type)
		if ticket == nil {
			return nil, apperrors.Configuration("session has no ticket type for section %s", d.Type)
		}
		if ticket.Available < d.Quantity {
			return nil, apperrors.Conflict("only %d %s tickets left", ticket.Available, d.Type)
		}
		debits[i].UnitPrice = ticket.Price
	}

	res := &Reservation{Debits: debits, Seats: make([]ReservedSeat, 0, len(selected))}
	for _, sel := range selected {
		seat := &s.Seats[idx[sel.Key()]]
		holder := userID
		seat.Status = seats.StatusBooked
		seat.User = &holder
		res.Seats = append(res.Seats, ReservedSeat{
			SeatID:  sel.SeatID,
			Section: sel.Section,
			Price:   s.Ticket(sel.Section).Price,
		})
	}
	for _, d := range debits {
		s.Ticket(d.Type).Available -= d.Quantity
	}
	s.Occupancy += len(selected)

	return res, nil
}

// Release undoes a reservation made by userID
func (s *Session) Release(res *Reservation, userID string) error {
	idx := s.seatIndex()
	for _, rs := range res.Seats {
		i, ok := idx[seats.Key(rs.Section, rs.SeatID)]
		if !ok {
			return apperrors.NotFound("seat %s not found in section %s", rs.SeatID, rs.Section)
		}
		seat := s.Seats[i]
		if seat.Status != seats.StatusBooked || seat.User == nil || *seat.User != userID {
			return apperrors.Conflict("seat %s in section %s is not booked by this user", rs.SeatID, rs.Section)
		}
	}
	for _, d := range res.Debits {
		if s.Ticket(d.Type) == nil {
			return apperrors.Configuration("session has no ticket type for section %s", d.Type)
		}
	}

	for _, rs := range res.Seats {
		seat := &s.Seats[idx[seats.Key(rs.Section, rs.SeatID)]]
		seat.Status = seats.StatusAvailable
		seat.User = nil
	}
	for _, d := range res.Debits {
		t := s.Ticket(d.Type)
		t.Available = min(t.Available+d.Quantity, t.TotalSeats)
	}
	s.Occupancy = max(s.Occupancy-len(res.Seats), 0)
	return nil
}

// groupBySection counts selections per section, in the order sections first appear
func groupBySection(selected []seats.Selection) []TicketDebit {
	var debits []TicketDebit
	pos := make(map[seats.SectionName]int)
	for _, sel := range selected {
		i, ok := pos[sel.Section]
		if !ok {
			i = len(debits)
			pos[sel.Section] = i
			debits = append(debits, TicketDebit{Type: sel.Section})
		}
		debits[i].Quantity++
	}
	return debits
}
