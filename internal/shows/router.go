package shows

import (
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// Router handles show-related routes
type Router struct {
	controller *Controller
	config     *config.Config
}

func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers all show routes
func (showRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	shows := rg.Group("/shows")
	{
		// Public routes
		shows.GET("", showRouter.controller.ListUpcoming)
		shows.GET("/movies", showRouter.controller.ListMoviesWithShows)
		shows.GET("/movies/:movieId", showRouter.controller.GetShowtimes)
		shows.GET("/:id", showRouter.controller.GetShow)

		// Admin routes
		admin := shows.Group("")
		admin.Use(middleware.JWTAuthWithConfig(showRouter.config), middleware.RequireAdmin())
		{
			admin.POST("", showRouter.controller.CreateShows)
		}
	}
}
