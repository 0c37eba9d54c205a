package shows

import (
	"time"

	"github.com/google/uuid"
)

// ShowSummary is the listing view of a show, without the seat map.
type ShowSummary struct {
	ID           uuid.UUID  `json:"id"`
	MovieID      string     `json:"movie_id"`
	Screen       string     `json:"screen"`
	StartTime    time.Time  `json:"start_time"`
	PricePerSeat float64    `json:"price_per_seat"`
	Seats        SeatCounts `json:"seats"`
}

// ShowDetail is the full view of a show including per-seat availability.
// Seat states are reduced to availability; who holds a seat is not exposed.
type ShowDetail struct {
	ID           uuid.UUID         `json:"id"`
	MovieID      string            `json:"movie_id"`
	Screen       string            `json:"screen"`
	StartTime    time.Time         `json:"start_time"`
	PricePerSeat float64           `json:"price_per_seat"`
	Seats        map[string]string `json:"seats"` // label -> "available" | "unavailable"
	Counts       SeatCounts        `json:"counts"`
}

// MovieShowtimes groups a movie's upcoming shows by calendar date.
type MovieShowtimes struct {
	MovieID string                   `json:"movie_id"`
	Dates   map[string][]ShowSummary `json:"dates"` // "2026-08-30" -> shows that day
}

func toSummary(show *Show) ShowSummary {
	return ShowSummary{
		ID:           show.ID,
		MovieID:      show.MovieID,
		Screen:       show.Screen,
		StartTime:    show.StartTime,
		PricePerSeat: show.PricePerSeat,
		Seats:        show.SeatMap.CountSeats(),
	}
}
