package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "investclub/internal/errors"
	"investclub/internal/pagination"
	"investclub/internal/services"
)

// PlanHandler handles plan catalog requests.
type PlanHandler struct {
	planService  services.PlanServicer
	auditService services.AuditServicer
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService services.PlanServicer, auditService services.AuditServicer) *PlanHandler {
	return &PlanHandler{planService: planService, auditService: auditService}
}

// ListActivePlans returns the active plan catalog
// @Summary     List active investment plans
// @Tags        plans
// @Produce     json
// @Success     200 {array} models.Plan
// @Router      /plans [get]
func (h *PlanHandler) ListActivePlans(c *gin.Context) {
	plans, err := h.planService.ListActivePlans()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// CreatePlanRequest represents the request payload for creating a plan
type CreatePlanRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Invest   int64   `json:"invest" binding:"required,gt=0"`
	Daily    int64   `json:"daily" binding:"required,gt=0"`
	Total    int64   `json:"total" binding:"required,gt=0"`
	Days     int     `json:"days" binding:"required,gt=0"`
	ROI      float64 `json:"roi" binding:"gte=0"`
	Benefits string  `json:"benefits" binding:"max=2000"`
	Badge    string  `json:"badge" binding:"max=50"`
}

// CreatePlan creates a new investment plan
// @Summary     Create an investment plan
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePlanRequest true "Plan details"
// @Success     201 {object} models.Plan "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.planService.CreatePlan(req.Name, req.Invest, req.Daily, req.Total, req.Days, req.ROI, req.Benefits, req.Badge)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "CREATE_PLAN", "plan", plan.ID, c.ClientIP(),
		map[string]interface{}{"name": plan.Name, "invest": plan.Invest, "daily": plan.Daily, "days": plan.Days})

	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

// UpdatePlanRequest represents the request payload for updating a plan
type UpdatePlanRequest struct {
	Name     *string  `json:"name" binding:"omitempty,max=100"`
	Invest   *int64   `json:"invest" binding:"omitempty,gt=0"`
	Daily    *int64   `json:"daily" binding:"omitempty,gt=0"`
	Total    *int64   `json:"total" binding:"omitempty,gt=0"`
	Days     *int     `json:"days" binding:"omitempty,gt=0"`
	ROI      *float64 `json:"roi" binding:"omitempty,gte=0"`
	Benefits *string  `json:"benefits" binding:"omitempty,max=2000"`
	Badge    *string  `json:"badge" binding:"omitempty,max=50"`
	IsActive *bool    `json:"is_active"`
}

// UpdatePlan updates an existing investment plan
// @Summary     Update an investment plan
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Param       request body UpdatePlanRequest true "Fields to update"
// @Success     200 {object} models.Plan "Plan updated"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /admin/plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.planService.UpdatePlan(c.Param("id"), req.Name, req.Invest, req.Daily, req.Total, req.Days, req.ROI, req.Benefits, req.Badge, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "UPDATE_PLAN", "plan", plan.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// DeletePlan removes an investment plan
// @Summary     Delete an investment plan
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     204 "Plan deleted"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /admin/plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID := c.Param("id")
	if err := h.planService.DeletePlan(planID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "DELETE_PLAN", "plan", planID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// ListPlans returns all plans including inactive ones
// @Summary     List all investment plans
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Plan]
// @Router      /admin/plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plans, err := h.planService.ListPlans(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}
