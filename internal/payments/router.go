package payments

import (
	"github.com/gin-gonic/gin"
)

// Router handles payment webhook routes. The webhook is called by the
// payment provider, not by end users, so it sits outside JWT auth.
type Router struct {
	controller *Controller
}

func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes registers all payment routes
func (paymentRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", paymentRouter.controller.Webhook)
	}
}
