package shows

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatStatus is the lifecycle state of a single seat within a show.
type SeatStatus string

const (
	SeatFree SeatStatus = "free"
	SeatHeld SeatStatus = "held"
	SeatSold SeatStatus = "sold"
)

// SeatState records who holds or bought a seat. BookingID and HeldAt are
// set for held and sold seats and cleared when the seat is released.
type SeatState struct {
	Status    SeatStatus `json:"status"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	HeldAt    *time.Time `json:"held_at,omitempty"`
}

// SeatMap is the full seat inventory of a show, keyed by seat label
// ("A1", "B7"). It is stored as a single JSONB column so a show's seat
// state always changes as one atomic row update.
type SeatMap map[string]SeatState

func (m SeatMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *SeatMap) Scan(value interface{}) error {
	if value == nil {
		*m = SeatMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported seat map column type %T", value)
	}
	return json.Unmarshal(data, m)
}

// Clone returns an independent copy of the seat map.
func (m SeatMap) Clone() SeatMap {
	cloned := make(SeatMap, len(m))
	for label, seat := range m {
		cloned[label] = seat
	}
	return cloned
}

const (
	DefaultRows        = 10
	DefaultSeatsPerRow = 10
)

// NewSeatMap builds a free seat map of rows x seatsPerRow. Rows are
// lettered A onward, seats numbered from 1.
func NewSeatMap(rows, seatsPerRow int) SeatMap {
	if rows <= 0 {
		rows = DefaultRows
	}
	if seatsPerRow <= 0 {
		seatsPerRow = DefaultSeatsPerRow
	}
	seatMap := make(SeatMap, rows*seatsPerRow)
	for r := 0; r < rows; r++ {
		rowLabel := string(rune('A' + r))
		for s := 1; s <= seatsPerRow; s++ {
			seatMap[fmt.Sprintf("%s%d", rowLabel, s)] = SeatState{Status: SeatFree}
		}
	}
	return seatMap
}

// Show is a scheduled screening of a catalog title. MovieID is a weak
// reference into the movie snapshot table; shows remain valid even when
// the metadata has not been fetched yet.
//
// Version guards concurrent seat map writes: every update goes through a
// compare-and-swap on this column.
type Show struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	MovieID      string    `json:"movie_id" gorm:"not null;index"`
	Screen       string    `json:"screen" gorm:"not null"`
	StartTime    time.Time `json:"start_time" gorm:"not null"`
	PricePerSeat float64   `json:"price_per_seat" gorm:"not null"`
	SeatMap      SeatMap   `json:"seat_map" gorm:"type:jsonb;not null"`
	Version      int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SeatCounts summarizes a seat map.
type SeatCounts struct {
	Total int `json:"total"`
	Free  int `json:"free"`
	Held  int `json:"held"`
	Sold  int `json:"sold"`
}

// CountSeats tallies the seat map by status.
func (m SeatMap) CountSeats() SeatCounts {
	counts := SeatCounts{Total: len(m)}
	for _, seat := range m {
		switch seat.Status {
		case SeatFree:
			counts.Free++
		case SeatHeld:
			counts.Held++
		case SeatSold:
			counts.Sold++
		}
	}
	return counts
}
