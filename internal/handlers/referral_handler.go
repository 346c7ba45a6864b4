package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"investclub/internal/services"
)

// ReferralHandler handles referral overview requests.
type ReferralHandler struct {
	referralService services.ReferralServicer
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(referralService services.ReferralServicer) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// GetOverview returns the user's referral code, downline counts, and
// commission totals per level
// @Summary     Get referral overview
// @Tags        referrals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ReferralOverview
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /referrals [get]
func (h *ReferralHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.referralService.GetOverview(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
