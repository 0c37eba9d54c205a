package movies

import (
	"errors"
	"net/http"

	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetMovie returns the metadata for a single catalog title.
func (c *Controller) GetMovie(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Movie id is required", nil, nil)
		return
	}

	detail, err := c.service.GetOrRefresh(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrMovieNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Movie not found", nil, nil)
		case errors.Is(err, ErrCatalogUnavailable):
			response.RespondJSON(ctx, "error", http.StatusServiceUnavailable, "Movie catalog is currently unavailable", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch movie", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Movie retrieved successfully", detail, nil)
}

// ListPopular returns the ranked popular titles.
func (c *Controller) ListPopular(ctx *gin.Context) {
	popular, err := c.service.ListPopular(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, ErrCatalogUnavailable) {
			response.RespondJSON(ctx, "error", http.StatusServiceUnavailable, "Movie catalog is currently unavailable", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch popular movies", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Popular movies retrieved successfully", popular, nil)
}
