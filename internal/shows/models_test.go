package shows

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSeatMap(t *testing.T) {
	t.Run("builds labeled free seats", func(t *testing.T) {
		m := NewSeatMap(2, 3)
		if len(m) != 6 {
			t.Fatalf("len = %d, want 6", len(m))
		}
		for _, label := range []string{"A1", "A2", "A3", "B1", "B2", "B3"} {
			seat, ok := m[label]
			if !ok {
				t.Fatalf("missing seat %s", label)
			}
			if seat.Status != SeatFree {
				t.Errorf("seat %s status = %s, want free", label, seat.Status)
			}
		}
	})

	t.Run("defaults on non-positive dimensions", func(t *testing.T) {
		m := NewSeatMap(0, -1)
		if len(m) != DefaultRows*DefaultSeatsPerRow {
			t.Fatalf("len = %d, want %d", len(m), DefaultRows*DefaultSeatsPerRow)
		}
	})
}

func TestSeatMapClone(t *testing.T) {
	original := NewSeatMap(1, 2)
	cloned := original.Clone()

	bookingID := uuid.New()
	now := time.Now()
	cloned["A1"] = SeatState{Status: SeatHeld, BookingID: &bookingID, HeldAt: &now}

	if original["A1"].Status != SeatFree {
		t.Error("mutating the clone must not touch the original")
	}
}

func TestCountSeats(t *testing.T) {
	m := NewSeatMap(1, 4)
	bookingID := uuid.New()
	now := time.Now()
	m["A1"] = SeatState{Status: SeatHeld, BookingID: &bookingID, HeldAt: &now}
	m["A2"] = SeatState{Status: SeatSold, BookingID: &bookingID}

	counts := m.CountSeats()
	if counts.Total != 4 || counts.Free != 2 || counts.Held != 1 || counts.Sold != 1 {
		t.Fatalf("counts = %+v", counts)
	}
}
