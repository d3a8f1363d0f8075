package handlers

import (
	"database/sql"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/services"
	"retouchlab-backend/internal/supabase"
)

const maxUploadMemory = 32 << 20 // 32MB

type OrdersHandler struct {
	billing       *services.BillingService
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
	logger        *zap.SugaredLogger
}

func NewOrdersHandler(billing *services.BillingService, dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient, logger *zap.SugaredLogger) *OrdersHandler {
	return &OrdersHandler{
		billing:       billing,
		dbClient:      dbClient,
		storageClient: storageClient,
		logger:        logger,
	}
}

// CreateOrder godoc
// @Summary     Create a retouching order
// @Description Uploads the photos to retouch, runs the payment gate and either completes the order (VIP deferred billing, promo credits) or returns a checkout redirect URL.
// @Tags        orders
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       photos formData file true "Photos to retouch (multiple files allowed)"
// @Param       instructions formData string false "Retouching instructions"
// @Param       force_payment formData bool false "Pay now even with deferred billing enabled"
// @Success     200 {object} models.CreateOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	var req models.CreateOrderRequest
	_ = c.ShouldBind(&req)

	form := c.Request.MultipartForm
	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no photos uploaded"})
		return
	}

	result, err := h.billing.CreateOrder(c.Request.Context(), userID, len(files), req.Instructions, req.ForcePayment)
	if err != nil {
		status := http.StatusInternalServerError
		if err == services.ErrNoPhotos {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "failed to create order",
			Message: err.Error(),
		})
		return
	}
	order := result.Order

	// Store originals. A failed file after the order row exists is logged and
	// skipped; the admin screens reconcile partial uploads.
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			h.logger.Errorw("failed to open uploaded photo", "order_id", order.ID, "filename", fh.Filename, "error", err)
			continue
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			h.logger.Errorw("failed to read uploaded photo", "order_id", order.ID, "filename", fh.Filename, "error", err)
			continue
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}

		storagePath, storageURL, err := h.storageClient.UploadOrderFile(userID, order.ID, supabase.KindOriginal, filepath.Base(fh.Filename), contentType, data)
		if err != nil {
			h.logger.Errorw("failed to upload photo to storage", "order_id", order.ID, "filename", fh.Filename, "error", err)
			continue
		}

		file := &models.OrderFile{
			ID:          uuid.New(),
			OrderID:     order.ID,
			UserID:      userID,
			Filename:    filepath.Base(fh.Filename),
			StoragePath: storagePath,
			StorageURL:  storageURL,
			FileSize:    sql.NullInt64{Int64: int64(len(data)), Valid: true},
			MimeType:    contentType,
			CreatedAt:   time.Now(),
		}
		if err := h.dbClient.CreateOrderFile(c.Request.Context(), file); err != nil {
			h.logger.Errorw("failed to record photo", "order_id", order.ID, "filename", fh.Filename, "error", err)
		}
	}

	c.JSON(http.StatusOK, models.CreateOrderResponse{
		OrderID:         order.ID.String(),
		Status:          string(order.Status),
		AmountCents:     order.AmountCents,
		Currency:        order.Currency,
		FreePhotosUsed:  order.FreePhotosUsed,
		PaymentRequired: result.PaymentRequired(),
		CheckoutURL:     result.CheckoutURL,
	})
}

// ListOrders godoc
// @Summary     List the caller's orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := h.dbClient.ListOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.OrderListResponse{Orders: ordersToResponses(orders)})
}

// GetOrder godoc
// @Summary     Get one of the caller's orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "order_id")
	if !ok {
		return
	}

	order, err := h.dbClient.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "order not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// AdminListOrders returns every order for the back office.
func (h *OrdersHandler) AdminListOrders(c *gin.Context) {
	orders, err := h.dbClient.ListAllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.OrderListResponse{Orders: ordersToResponses(orders)})
}

func orderToResponse(o *models.Order) models.OrderResponse {
	resp := models.OrderResponse{
		ID:             o.ID.String(),
		Status:         string(o.Status),
		PhotoCount:     o.PhotoCount,
		FreePhotosUsed: o.FreePhotosUsed,
		AmountCents:    o.AmountCents,
		Currency:       o.Currency,
		CreatedAt:      o.CreatedAt,
	}
	if o.Instructions.Valid {
		resp.Instructions = o.Instructions.String
	}
	if o.CompletedAt.Valid {
		t := o.CompletedAt.Time
		resp.CompletedAt = &t
	}
	if o.DeliveredAt.Valid {
		t := o.DeliveredAt.Time
		resp.DeliveredAt = &t
	}
	return resp
}

func ordersToResponses(orders []models.Order) []models.OrderResponse {
	responses := make([]models.OrderResponse, len(orders))
	for i := range orders {
		responses[i] = orderToResponse(&orders[i])
	}
	return responses
}
