package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/supabase"
)

type PromosHandler struct {
	dbClient *supabase.DatabaseClient
	logger   *zap.SugaredLogger
}

func NewPromosHandler(dbClient *supabase.DatabaseClient, logger *zap.SugaredLogger) *PromosHandler {
	return &PromosHandler{
		dbClient: dbClient,
		logger:   logger,
	}
}

// Redeem godoc
// @Summary     Redeem a promo code
// @Description Grants the code's free photos to the caller and draws them from the shared pool. A code can be redeemed once per user.
// @Tags        promos
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.RedeemPromoRequest true "Promo code"
// @Success     200 {object} models.PromoBalanceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /promos/redeem [post]
func (h *PromosHandler) Redeem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.RedeemPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.dbClient.RedeemPromoCode(c.Request.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, supabase.ErrPromoNotAvailable):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "promo code is not available"})
		case errors.Is(err, supabase.ErrPromoAlreadyUsed):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "promo code already redeemed"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to redeem promo code",
				Message: err.Error(),
			})
		}
		return
	}

	h.respondBalance(c, userID)
}

// Balance godoc
// @Summary     Get the caller's promo credit balance
// @Tags        promos
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PromoBalanceResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /promos/balance [get]
func (h *PromosHandler) Balance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.respondBalance(c, userID)
}

func (h *PromosHandler) respondBalance(c *gin.Context, userID uuid.UUID) {
	remaining, err := h.dbClient.AvailablePromoPhotos(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load promo balance",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.PromoBalanceResponse{PhotosRemaining: remaining})
}

// AdminCreate godoc
// @Summary     Create a promo code
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreatePromoCodeRequest true "Promo code definition"
// @Success     201 {object} models.PromoCodeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/promos [post]
func (h *PromosHandler) AdminCreate(c *gin.Context) {
	var req models.CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	promo := &models.PromoCode{
		ID:                  uuid.New(),
		Code:                req.Code,
		PhotosPerRedemption: req.PhotosPerRedemption,
		PoolTotal:           req.PoolTotal,
		PoolRemaining:       req.PoolTotal,
		Active:              true,
	}
	if req.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid expires_at",
				Message: "expected RFC 3339 timestamp",
			})
			return
		}
		promo.ExpiresAt = sql.NullTime{Time: expires, Valid: true}
	}

	if err := h.dbClient.CreatePromoCode(c.Request.Context(), promo); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create promo code",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, promoToResponse(promo))
}

// AdminList godoc
// @Summary     List promo codes
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.PromoCodeResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/promos [get]
func (h *PromosHandler) AdminList(c *gin.Context) {
	promos, err := h.dbClient.ListPromoCodes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list promo codes",
			Message: err.Error(),
		})
		return
	}

	resp := make([]models.PromoCodeResponse, 0, len(promos))
	for i := range promos {
		resp = append(resp, promoToResponse(&promos[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func promoToResponse(p *models.PromoCode) models.PromoCodeResponse {
	resp := models.PromoCodeResponse{
		ID:                  p.ID.String(),
		Code:                p.Code,
		PhotosPerRedemption: p.PhotosPerRedemption,
		PoolTotal:           p.PoolTotal,
		PoolRemaining:       p.PoolRemaining,
		Active:              p.Active,
		CreatedAt:           p.CreatedAt,
	}
	if p.ExpiresAt.Valid {
		resp.ExpiresAt = &p.ExpiresAt.Time
	}
	return resp
}

// AdminUpdate godoc
// @Summary     Update a promo code
// @Description Toggles the code on or off and/or adjusts the remaining pool.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Promo code ID"
// @Param       request body models.UpdatePromoCodeRequest true "Fields to change"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/promos/{id} [patch]
func (h *PromosHandler) AdminUpdate(c *gin.Context) {
	promoID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.UpdatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	if err := h.dbClient.UpdatePromoCode(c.Request.Context(), promoID, req.Active, req.PoolRemaining); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update promo code",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// AdminDelete godoc
// @Summary     Delete a promo code
// @Description Removes the code. Credits already granted to users are kept.
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Promo code ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/promos/{id} [delete]
func (h *PromosHandler) AdminDelete(c *gin.Context) {
	promoID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.DeletePromoCode(c.Request.Context(), promoID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete promo code",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
