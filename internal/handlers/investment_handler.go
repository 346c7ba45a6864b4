package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "investclub/internal/errors"
	"investclub/internal/pagination"
	"investclub/internal/services"
)

// InvestmentHandler handles plan purchase requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
	auditService      services.AuditServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer, auditService services.AuditServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, auditService: auditService}
}

// InvestRequest represents the request payload for investing in a plan
type InvestRequest struct {
	PlanID string `json:"plan_id" binding:"required,uuid"`
}

// Invest purchases a plan with the user's available balance
// @Summary     Invest in a plan
// @Description Debit the plan's invest amount and open a new active investment
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InvestRequest true "Plan to invest in"
// @Success     201 {object} models.Investment "Investment opened"
// @Failure     400 {object} ErrorResponse "Insufficient balance or inactive plan"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /investments [post]
func (h *InvestmentHandler) Invest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.InvestInPlan(userID, req.PlanID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INVEST_IN_PLAN", "investment", investment.ID, c.ClientIP(),
		map[string]interface{}{"plan_id": req.PlanID, "amount": investment.Amount})

	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// ListInvestments returns the user's investments
// @Summary     List own investments
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Investment]
// @Router      /investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investments, err := h.investmentService.GetUserInvestments(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, investments)
}
