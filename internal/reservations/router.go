package reservations

import (
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// Router handles reservation routes. Every route requires authentication.
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

// SetupRoutes registers all reservation routes
func (reservationRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuthWithConfig(reservationRouter.config))
	{
		reservations.POST("/hold", reservationRouter.controller.CreateHold)
		reservations.GET("", reservationRouter.controller.ListBookings)
		reservations.GET("/all", middleware.RequireAdmin(), reservationRouter.controller.ListAllBookings)
		reservations.GET("/:id", reservationRouter.controller.GetBooking)
		reservations.DELETE("/:id", reservationRouter.controller.CancelHold)
	}
}
