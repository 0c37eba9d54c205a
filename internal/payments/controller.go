package payments

import (
	"errors"
	"net/http"

	"cinebook/internal/reservations"
	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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

// Webhook receives payment provider events. 2xx acknowledges delivery;
// anything else makes the provider redeliver.
func (c *Controller) Webhook(ctx *gin.Context) {
	var event WebhookEvent
	if err := ctx.ShouldBindJSON(&event); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event payload", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&event); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	if err := c.service.HandleEvent(ctx.Request.Context(), &event); err != nil {
		switch {
		case errors.Is(err, reservations.ErrAmountMismatch):
			response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Payment amount does not match booking", nil, nil)
		case errors.Is(err, reservations.ErrHoldExpired):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking hold expired before confirmation", nil, nil)
		case errors.Is(err, reservations.ErrAlreadyFinalized):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking is already finalized", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process payment event", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event processed", nil, nil)
}
