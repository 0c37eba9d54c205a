package movies

import (
	"github.com/gin-gonic/gin"
)

// Router handles movie catalog routes
type Router struct {
	controller *Controller
}

func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes registers all movie routes. All routes are public.
func (movieRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	movies := rg.Group("/movies")
	{
		movies.GET("/popular", movieRouter.controller.ListPopular)
		movies.GET("/:id", movieRouter.controller.GetMovie)
	}
}
