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
	"retouchlab-backend/internal/notify"
	"retouchlab-backend/internal/supabase"
)

// FilesHandler serves order files to clients and takes delivery uploads from
// the back office.
type FilesHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
	realtime      *supabase.RealtimeClient
	notifier      *notify.Client
	logger        *zap.SugaredLogger
}

func NewFilesHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient, realtime *supabase.RealtimeClient, notifier *notify.Client, logger *zap.SugaredLogger) *FilesHandler {
	return &FilesHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
		realtime:      realtime,
		notifier:      notifier,
		logger:        logger,
	}
}

// GetOrderFiles godoc
// @Summary     List an order's files
// @Description Returns the originals the caller uploaded and, once the studio has delivered, the retouched finals.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderFilesResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders/{order_id}/files [get]
func (h *FilesHandler) GetOrderFiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "order_id")
	if !ok {
		return
	}

	// Ownership check before touching the file tables.
	if _, err := h.dbClient.GetOrder(c.Request.Context(), orderID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}

	originals, err := h.dbClient.GetOrderFiles(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list order files",
			Message: err.Error(),
		})
		return
	}
	delivered, err := h.dbClient.GetDeliveredFiles(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list delivered files",
			Message: err.Error(),
		})
		return
	}

	resp := models.OrderFilesResponse{
		Originals: make([]models.FileResponse, 0, len(originals)),
		Delivered: make([]models.FileResponse, 0, len(delivered)),
	}
	for _, f := range originals {
		resp.Originals = append(resp.Originals, models.FileResponse{
			ID:        f.ID.String(),
			Filename:  f.Filename,
			URL:       f.StorageURL,
			MimeType:  f.MimeType,
			CreatedAt: f.CreatedAt,
		})
	}
	for _, f := range delivered {
		resp.Delivered = append(resp.Delivered, models.FileResponse{
			ID:        f.ID.String(),
			Filename:  f.Filename,
			URL:       f.StorageURL,
			MimeType:  f.MimeType,
			CreatedAt: f.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// DeliverFiles godoc
// @Summary     Deliver retouched files for an order
// @Description Uploads the retouched finals, marks the order delivered and notifies the client. Unlike intake, a failed file here fails the request so the studio can retry.
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Param       files formData file true "Retouched files (multiple allowed)"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/orders/{order_id}/deliver [post]
func (h *FilesHandler) DeliverFiles(c *gin.Context) {
	orderID, ok := pathUUID(c, "order_id")
	if !ok {
		return
	}

	order, err := h.dbClient.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}

	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}
	files := c.Request.MultipartForm.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files uploaded"})
		return
	}

	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to read upload",
				Message: err.Error(),
			})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to read upload",
				Message: err.Error(),
			})
			return
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}

		storagePath, storageURL, err := h.storageClient.UploadOrderFile(order.UserID, order.ID, supabase.KindDelivered, filepath.Base(fh.Filename), contentType, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to store delivered file",
				Message: err.Error(),
			})
			return
		}

		file := &models.DeliveredFile{
			ID:          uuid.New(),
			OrderID:     order.ID,
			UserID:      order.UserID,
			Filename:    filepath.Base(fh.Filename),
			StoragePath: storagePath,
			StorageURL:  storageURL,
			FileSize:    sql.NullInt64{Int64: int64(len(data)), Valid: true},
			MimeType:    contentType,
			CreatedAt:   time.Now(),
		}
		if err := h.dbClient.CreateDeliveredFile(c.Request.Context(), file); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to record delivered file",
				Message: err.Error(),
			})
			return
		}
	}

	now := time.Now()
	if err := h.dbClient.MarkOrderDelivered(c.Request.Context(), order.ID, now); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to mark order delivered",
			Message: err.Error(),
		})
		return
	}
	order.Status = models.OrderStatusDelivered
	order.DeliveredAt = nullTime(now)

	// Notifications are best-effort once the files and the status are in.
	if profile, err := h.dbClient.GetProfile(c.Request.Context(), order.UserID); err != nil {
		h.logger.Warnw("failed to load profile for delivery notification", "order_id", order.ID, "error", err)
	} else if err := h.notifier.OrderDelivered(c.Request.Context(), profile.Email, order.ID.String(), len(files)); err != nil {
		h.logger.Warnw("failed to send delivery notification", "order_id", order.ID, "error", err)
	}
	if err := h.realtime.PublishUserEvent(order.UserID, "order_delivered",
		supabase.OrderDeliveredPayload(order.ID, len(files))); err != nil {
		h.logger.Warnw("failed to publish delivery event", "order_id", order.ID, "error", err)
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}
