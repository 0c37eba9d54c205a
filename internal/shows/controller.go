package shows

import (
	"errors"
	"net/http"

	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateShows schedules screenings. Admin only.
func (c *Controller) CreateShows(ctx *gin.Context) {
	var req CreateShowsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	created, err := c.service.CreateShows(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrStartTimeInPast) {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Show start time must be in the future", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create shows", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Shows created successfully", created, nil)
}

// GetShow returns a show with its seat availability.
func (c *Controller) GetShow(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid show id", nil, nil)
		return
	}

	detail, err := c.service.GetShow(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrShowNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Show not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch show", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Show retrieved successfully", detail, nil)
}

// ListUpcoming returns all future shows.
func (c *Controller) ListUpcoming(ctx *gin.Context) {
	shows, err := c.service.ListUpcoming(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch shows", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Shows retrieved successfully", shows, nil)
}

// ListMoviesWithShows returns catalog ids that have upcoming screenings.
func (c *Controller) ListMoviesWithShows(ctx *gin.Context) {
	movieIDs, err := c.service.ListMoviesWithUpcomingShows(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch movies", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Movies retrieved successfully", gin.H{"movie_ids": movieIDs}, nil)
}

// GetShowtimes returns a movie's upcoming shows grouped by date.
func (c *Controller) GetShowtimes(ctx *gin.Context) {
	movieID := ctx.Param("movieId")
	if movieID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Movie id is required", nil, nil)
		return
	}

	showtimes, err := c.service.GetShowtimes(ctx.Request.Context(), movieID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch showtimes", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Showtimes retrieved successfully", showtimes, nil)
}
