package shows

import "time"

// CreateShowsRequest schedules one or more screenings of a movie.
type CreateShowsRequest struct {
	MovieID      string      `json:"movie_id" validate:"required"`
	Screen       string      `json:"screen" validate:"required"`
	PricePerSeat float64     `json:"price_per_seat" validate:"required,gt=0"`
	Rows         int         `json:"rows" validate:"omitempty,min=1,max=26"`
	SeatsPerRow  int         `json:"seats_per_row" validate:"omitempty,min=1,max=50"`
	StartTimes   []time.Time `json:"start_times" validate:"required,min=1,dive,required"`
}
