package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/supabase"
)

type ClientsHandler struct {
	dbClient *supabase.DatabaseClient
	logger   *zap.SugaredLogger
}

func NewClientsHandler(dbClient *supabase.DatabaseClient, logger *zap.SugaredLogger) *ClientsHandler {
	return &ClientsHandler{
		dbClient: dbClient,
		logger:   logger,
	}
}

// List godoc
// @Summary     List clients
// @Description Lists every client profile with order counts, unbilled photos and outstanding invoice totals.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.ClientResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/clients [get]
func (h *ClientsHandler) List(c *gin.Context) {
	clients, err := h.dbClient.ListClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list clients",
			Message: err.Error(),
		})
		return
	}

	resp := make([]models.ClientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, clientToResponse(&clients[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary     Update a client profile
// @Description Partially updates a client: VIP and deferred-billing flags, billing details and admin notes. Only the fields present in the body change.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Client (user) ID"
// @Param       request body models.UpdateClientRequest true "Fields to change"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/clients/{id} [patch]
func (h *ClientsHandler) Update(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	if err := h.dbClient.UpdateClient(c.Request.Context(), userID, &req); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update client",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

func clientToResponse(cs *models.ClientSummary) models.ClientResponse {
	return models.ClientResponse{
		ID:               cs.ID.String(),
		Email:            cs.Email,
		FullName:         cs.FullName.String,
		IsVIP:            cs.IsVIP,
		DeferredBilling:  cs.DeferredBilling,
		BillingName:      cs.BillingName.String,
		BillingAddress:   cs.BillingAddress.String,
		BillingCity:      cs.BillingCity.String,
		BillingPostal:    cs.BillingPostal.String,
		BillingCountry:   cs.BillingCountry.String,
		VATNumber:        cs.VATNumber.String,
		AdminNotes:       cs.AdminNotes.String,
		OrderCount:       cs.OrderCount,
		UnbilledPhotos:   cs.UnbilledPhotos,
		OutstandingCents: cs.OutstandingCents,
	}
}
