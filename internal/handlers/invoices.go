package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/supabase"
)

type InvoicesHandler struct {
	dbClient *supabase.DatabaseClient
	logger   *zap.SugaredLogger
}

func NewInvoicesHandler(dbClient *supabase.DatabaseClient, logger *zap.SugaredLogger) *InvoicesHandler {
	return &InvoicesHandler{
		dbClient: dbClient,
		logger:   logger,
	}
}

// ListMyInvoices godoc
// @Summary     List the caller's invoices
// @Description Returns the caller's invoices with line items, newest first. Trashed invoices are not included.
// @Tags        invoices
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.InvoiceResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /invoices [get]
func (h *InvoicesHandler) ListMyInvoices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoices, err := h.dbClient.ListInvoicesByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list invoices",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.invoicesWithItems(c, invoices)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdminListInvoices godoc
// @Summary     List all invoices
// @Description Lists invoices across all clients. Pass ?archived=true to see the trash instead.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       archived query bool false "List trashed invoices"
// @Success     200 {array} models.InvoiceResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/invoices [get]
func (h *InvoicesHandler) AdminListInvoices(c *gin.Context) {
	archived := c.Query("archived") == "true"

	invoices, err := h.dbClient.ListAllInvoices(c.Request.Context(), archived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list invoices",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.invoicesWithItems(c, invoices)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkPaid godoc
// @Summary     Mark an invoice paid
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.InvoiceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/invoices/{id}/mark-paid [post]
func (h *InvoicesHandler) MarkPaid(c *gin.Context) {
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.MarkInvoicePaid(c.Request.Context(), invoiceID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to mark invoice paid",
			Message: err.Error(),
		})
		return
	}

	h.respondInvoice(c, invoiceID)
}

// MarkOverdue godoc
// @Summary     Mark an invoice overdue
// @Description Moves a pending invoice to overdue. Paid and trashed invoices are left alone.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.InvoiceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/invoices/{id}/mark-overdue [post]
func (h *InvoicesHandler) MarkOverdue(c *gin.Context) {
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.MarkInvoiceOverdue(c.Request.Context(), invoiceID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to mark invoice overdue",
			Message: err.Error(),
		})
		return
	}

	h.respondInvoice(c, invoiceID)
}

// Archive godoc
// @Summary     Move an invoice to the trash
// @Description Soft-deletes the invoice. It disappears from client and admin lists but can be restored.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.InvoiceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/invoices/{id}/trash [post]
func (h *InvoicesHandler) Archive(c *gin.Context) {
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.ArchiveInvoice(c.Request.Context(), invoiceID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to trash invoice",
			Message: err.Error(),
		})
		return
	}

	h.respondInvoice(c, invoiceID)
}

// Restore godoc
// @Summary     Restore an invoice from the trash
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.InvoiceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/invoices/{id}/restore [post]
func (h *InvoicesHandler) Restore(c *gin.Context) {
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.RestoreInvoice(c.Request.Context(), invoiceID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to restore invoice",
			Message: err.Error(),
		})
		return
	}

	h.respondInvoice(c, invoiceID)
}

// Delete godoc
// @Summary     Permanently delete a trashed invoice
// @Description Hard-deletes an invoice and its items. Refused unless the invoice is already in the trash.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Invoice ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/invoices/{id} [delete]
func (h *InvoicesHandler) Delete(c *gin.Context) {
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.DeleteArchivedInvoice(c.Request.Context(), invoiceID); err != nil {
		if errors.Is(err, supabase.ErrInvoiceNotArchived) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "invoice must be trashed before deletion"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete invoice",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// respondInvoice reloads the invoice with its items and writes it out, so
// mutations return the fresh state.
func (h *InvoicesHandler) respondInvoice(c *gin.Context, invoiceID uuid.UUID) {
	inv, err := h.dbClient.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load invoice",
			Message: err.Error(),
		})
		return
	}

	items, err := h.dbClient.GetInvoiceItems(c.Request.Context(), invoiceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load invoice items",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, invoiceToResponse(inv, items))
}

func (h *InvoicesHandler) invoicesWithItems(c *gin.Context, invoices []models.DeferredInvoice) ([]models.InvoiceResponse, error) {
	resp := make([]models.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items, err := h.dbClient.GetInvoiceItems(c.Request.Context(), invoices[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to load invoice items",
				Message: err.Error(),
			})
			return nil, err
		}
		resp = append(resp, invoiceToResponse(&invoices[i], items))
	}
	return resp, nil
}

func invoiceToResponse(inv *models.DeferredInvoice, items []models.InvoiceItem) models.InvoiceResponse {
	resp := models.InvoiceResponse{
		ID:         inv.ID.String(),
		UserID:     inv.UserID.String(),
		TotalCents: inv.TotalCents,
		Currency:   inv.Currency,
		Status:     string(inv.Status),
		IssuedAt:   inv.IssuedAt,
		DueAt:      inv.DueAt,
		Items:      make([]models.InvoiceItemResponse, 0, len(items)),
	}
	if inv.PaidAt.Valid {
		resp.PaidAt = &inv.PaidAt.Time
	}
	if inv.ArchivedAt.Valid {
		resp.ArchivedAt = &inv.ArchivedAt.Time
	}
	for _, item := range items {
		ir := models.InvoiceItemResponse{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		}
		if item.OrderID.Valid {
			ir.OrderID = item.OrderID.UUID.String()
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
