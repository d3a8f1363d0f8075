package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/services"
)

type BillingAdminHandler struct {
	sweep  *services.SweepService
	logger *zap.SugaredLogger
}

func NewBillingAdminHandler(sweep *services.SweepService, logger *zap.SugaredLogger) *BillingAdminHandler {
	return &BillingAdminHandler{
		sweep:  sweep,
		logger: logger,
	}
}

// RunSweep godoc
// @Summary     Run the deferred-billing sweep
// @Description Aggregates a month of completed, unbilled deferred orders into one pending invoice per client. Defaults to the current month; pass ?month=YYYY-MM to sweep another one. Running twice for the same month issues nothing new.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       month query string false "Month to sweep (YYYY-MM)"
// @Success     200 {object} models.SweepReportResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/billing/run-sweep [post]
func (h *BillingAdminHandler) RunSweep(c *gin.Context) {
	ref := time.Now()
	if month := c.Query("month"); month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid month",
				Message: "expected YYYY-MM",
			})
			return
		}
		ref = parsed
	}

	report, err := h.sweep.Run(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "sweep failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SweepReportResponse{
		UsersInvoiced:  report.UsersInvoiced,
		OrdersInvoiced: report.OrdersInvoiced,
		TotalCents:     report.TotalCents,
	})
}

// ResetDeferredBilling godoc
// @Summary     Reset deferred billing for a client
// @Description Releases a client's swept orders for a month and trashes the matching pending invoices, so the month can be swept again after corrections.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ResetDeferredBillingRequest true "Client and month"
// @Success     200 {object} map[string]int64
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/billing/reset [post]
func (h *BillingAdminHandler) ResetDeferredBilling(c *gin.Context) {
	var req models.ResetDeferredBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user_id"})
		return
	}

	ref := time.Now()
	if req.Month != "" {
		ref, err = time.Parse("2006-01", req.Month)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid month",
				Message: "expected YYYY-MM",
			})
			return
		}
	}

	released, err := h.sweep.Reset(c.Request.Context(), userID, ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "reset failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders_released": released})
}
