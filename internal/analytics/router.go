package analytics

import (
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// Router handles analytics routes. Admin only.
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

// SetupRoutes registers all analytics routes
func (analyticsRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics")
	analytics.Use(middleware.JWTAuthWithConfig(analyticsRouter.config), middleware.RequireAdmin())
	{
		analytics.GET("/dashboard", analyticsRouter.controller.GetDashboard)
	}
}
