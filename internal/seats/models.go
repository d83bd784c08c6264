package seats

// Status is the lifecycle state of a seat within one session
type Status string

const (
	StatusAvailable Status = "available"
	// StatusReserved is never stored; it is projected from a live Redis hold.
	StatusReserved Status = "reserved"
	StatusBooked   Status = "booked"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusBooked:
		return true
	}
	return false
}

// SectionName identifies a venue section. It is also the ticket type key for seats in that section.
type SectionName string

// Seat is a bookable place in a session's seat map. User is set while the seat is booked.
type Seat struct {
	SeatID  string      `gorm:"column:seat_id;type:varchar(64);not null;uniqueIndex:idx_session_seat,priority:3" json:"seatId"`
	Section SectionName `gorm:"column:section;type:varchar(100);not null;uniqueIndex:idx_session_seat,priority:2" json:"section"`
	Status  Status      `gorm:"column:status;type:varchar(20);not null;default:'available';index" json:"status"`
	User    *string     `gorm:"column:user_id;type:varchar(64)" json:"user,omitempty"`
}

func (s Seat) Key() string {
	return Key(s.Section, s.SeatID)
}

func (s Seat) IsAvailable() bool {
	return s.Status == StatusAvailable
}

// Selection is a client reference to a seat
type Selection struct {
	SeatID  string      `json:"seatId" binding:"required"`
	Section SectionName `json:"section" binding:"required"`
}

func (s Selection) Key() string {
	return Key(s.Section, s.SeatID)
}

// Key is the per-session identity of a seat
func Key(section SectionName, seatID string) string {
	return string(section) + "/" + seatID
}

// DuplicateSelection returns the first selection that repeats an earlier one
func DuplicateSelection(selected []Selection) (Selection, bool) {
	seen := make(map[string]struct{}, len(selected))
	for _, sel := range selected {
		if _, ok := seen[sel.Key()]; ok {
			return sel, true
		}
		seen[sel.Key()] = struct{}{}
	}
	return Selection{}, false
}
