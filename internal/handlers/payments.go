package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/services"
)

type PaymentsHandler struct {
	billing *services.BillingService
	logger  *zap.SugaredLogger
}

func NewPaymentsHandler(billing *services.BillingService, logger *zap.SugaredLogger) *PaymentsHandler {
	return &PaymentsHandler{
		billing: billing,
		logger:  logger,
	}
}

// ConfirmPayment godoc
// @Summary     Confirm a checkout payment
// @Description Called when the client returns from hosted checkout. Verifies the session is paid and completes the order. Safe to call more than once for the same session.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ConfirmPaymentRequest true "Checkout session id"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /payments/confirm [post]
func (h *PaymentsHandler) ConfirmPayment(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	result, err := h.billing.ConfirmPayment(c.Request.Context(), req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotPaid):
			c.JSON(http.StatusPaymentRequired, models.ErrorResponse{Error: "payment not settled"})
		case errors.Is(err, services.ErrBadSession):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid checkout session"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to confirm payment",
				Message: err.Error(),
			})
		}
		return
	}

	if result.AlreadyConfirmed {
		h.logger.Infow("payment already confirmed", "order_id", result.Order.ID, "session_id", req.SessionID)
	}

	c.JSON(http.StatusOK, orderToResponse(result.Order))
}
