package reservations

import "github.com/google/uuid"

// CreateHoldRequest places a hold on specific seats of a show.
type CreateHoldRequest struct {
	ShowID uuid.UUID `json:"show_id" validate:"required"`
	Seats  []string  `json:"seats" validate:"required,min=1,max=10,dive,required"`
}
