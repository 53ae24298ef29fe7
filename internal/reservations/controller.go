package reservations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tixbridge/internal/shared/utils/response"
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

// Reserve handles POST /api/v1/reservations
func (c *Controller) Reserve(ctx *gin.Context) {
	var req ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := c.service.Reserve(ctx.Request.Context(), req.toRequest())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Reservation created successfully", result, nil)
}

// Confirm handles POST /api/v1/reservations/:id/confirm
func (c *Controller) Confirm(ctx *gin.Context) {
	var req ConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	confirmation, err := c.service.Confirm(ctx.Request.Context(), ctx.Param("id"), req.PaymentToken)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment status retrieved", confirmation, nil)
}
