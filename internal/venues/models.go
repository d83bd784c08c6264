package venues

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"ticketly/internal/seats"

	"github.com/google/uuid"
)

type Venue struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"not null" json:"name"`
	Capacity      int           `gorm:"not null" json:"capacity"`
	Location      Location      `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	SeatingLayout SeatingLayout `gorm:"type:jsonb;not null" json:"seatingLayout"`
	CreatedBy     string        `gorm:"type:varchar(64);index" json:"createdBy,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (Venue) TableName() string {
	return "venues"
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type Section struct {
	Name            seats.SectionName `json:"name" binding:"required"`
	SectionCapacity int               `json:"sectionCapacity" binding:"min=0"`
	Rows            []Row             `json:"rows" binding:"dive"`
}

// Row is one row of a section. Without explicit seats, ids are synthesized from the label.
type Row struct {
	Label string   `json:"label" binding:"required"`
	Seats []string `json:"seats,omitempty"`
}

// SeatingLayout is stored as a JSONB column
type SeatingLayout []Section

func (l SeatingLayout) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *SeatingLayout) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SeatingLayout", src)
	}
	return json.Unmarshal(raw, l)
}

// Section returns the named section of the layout
func (l SeatingLayout) Section(name seats.SectionName) (Section, bool) {
	for _, s := range l {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}
