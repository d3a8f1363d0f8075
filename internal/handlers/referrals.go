package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/supabase"
)

// defaultReferralRewardCents is credited to the referrer for each client they
// bring in.
const defaultReferralRewardCents int64 = 1000

type ReferralsHandler struct {
	dbClient *supabase.DatabaseClient
	logger   *zap.SugaredLogger
}

func NewReferralsHandler(dbClient *supabase.DatabaseClient, logger *zap.SugaredLogger) *ReferralsHandler {
	return &ReferralsHandler{
		dbClient: dbClient,
		logger:   logger,
	}
}

// MyCode godoc
// @Summary     Get the caller's referral code
// @Description Returns the caller's shareable referral code, creating one on first call.
// @Tags        referrals
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ReferralCodeResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /referrals/code [get]
func (h *ReferralsHandler) MyCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	code, err := h.dbClient.GetOrCreateReferralCode(c.Request.Context(), userID, newReferralCode(), defaultReferralRewardCents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load referral code",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ReferralCodeResponse{
		Code:        code.Code,
		RewardCents: code.RewardCents,
	})
}

// Apply godoc
// @Summary     Apply a referral code
// @Description Records that the caller was referred by the code's owner. A client can be referred once, and not by themselves.
// @Tags        referrals
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ApplyReferralRequest true "Referral code"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /referrals/apply [post]
func (h *ReferralsHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.dbClient.ApplyReferralCode(c.Request.Context(), userID, strings.ToUpper(strings.TrimSpace(req.Code))); err != nil {
		switch {
		case errors.Is(err, supabase.ErrReferralCodeNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "referral code not found"})
		case errors.Is(err, supabase.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "cannot apply your own referral code"})
		case errors.Is(err, supabase.ErrAlreadyReferred):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "already referred"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to apply referral code",
				Message: err.Error(),
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// AdminList godoc
// @Summary     List referrals
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.ReferralResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/referrals [get]
func (h *ReferralsHandler) AdminList(c *gin.Context) {
	referrals, err := h.dbClient.ListReferrals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list referrals",
			Message: err.Error(),
		})
		return
	}

	resp := make([]models.ReferralResponse, 0, len(referrals))
	for _, r := range referrals {
		resp = append(resp, models.ReferralResponse{
			ID:          r.ID.String(),
			ReferrerID:  r.ReferrerID.String(),
			ReferredID:  r.ReferredID.String(),
			Code:        r.Code,
			RewardCents: r.RewardCents,
			RewardPaid:  r.RewardPaid,
			CreatedAt:   r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// MarkPaid godoc
// @Summary     Mark a referral reward as paid out
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Referral ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/referrals/{id}/mark-paid [post]
func (h *ReferralsHandler) MarkPaid(c *gin.Context) {
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.MarkReferralPaid(c.Request.Context(), referralID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to mark referral paid",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// newReferralCode derives a short shareable code. Uniqueness is enforced by
// the database; eight hex characters keep collisions unlikely.
func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
