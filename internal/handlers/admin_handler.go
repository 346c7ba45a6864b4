package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "investclub/internal/errors"
	"investclub/internal/pagination"
	"investclub/internal/services"
)

// AdminHandler handles the superadmin back office: triggering accrual runs,
// reviewing deposits and withdrawals, and listing users and transactions.
type AdminHandler struct {
	accrualService     services.AccrualServicer
	userService        services.UserServicer
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accrualService services.AccrualServicer, userService services.UserServicer, transactionService services.TransactionServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{
		accrualService:     accrualService,
		userService:        userService,
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// RunAccrual triggers one daily accrual batch
// @Summary     Run the daily accrual batch
// @Description Advance every active investment by one day, credit daily returns, and fan out referral commissions. Idempotent within a day.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.AccrualResult "Run summary"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/accrual/run [post]
func (h *AdminHandler) RunAccrual(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accrualService.RunDailyAccrual()
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "RUN_ACCRUAL", "accrual", "", c.ClientIP(),
		map[string]interface{}{
			"users_credited": result.TotalUsersCredited,
			"credit_events":  result.TotalCreditEvents,
		})

	c.JSON(http.StatusOK, result)
}

// RunAccrualOps triggers an accrual batch from an external scheduler. It is
// guarded by the X-API-Key ops middleware instead of a user token.
// @Summary     Run the daily accrual batch (ops)
// @Tags        ops
// @Produce     json
// @Success     200 {object} services.AccrualResult "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /ops/accrual/run [post]
func (h *AdminHandler) RunAccrualOps(c *gin.Context) {
	result, err := h.accrualService.RunDailyAccrual()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReviewRequest represents the admin decision on a pending entry
type ReviewRequest struct {
	Approve bool `json:"approve"`
}

// ReviewTransaction approves or rejects a pending deposit/withdrawal
// @Summary     Review a pending deposit or withdrawal
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body ReviewRequest true "Decision"
// @Success     200 {object} models.Transaction "Reviewed entry"
// @Failure     409 {object} ErrorResponse "Already reviewed"
// @Router      /admin/transactions/{id}/review [post]
func (h *AdminHandler) ReviewTransaction(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.transactionService.ReviewTransaction(c.Param("id"), req.Approve)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := "REJECT_TRANSACTION"
	if req.Approve {
		action = "APPROVE_TRANSACTION"
	}
	h.auditService.Log(adminID, action, "transaction", entry.ID, c.ClientIP(),
		map[string]interface{}{"type": entry.Type, "amount": entry.Amount})

	c.JSON(http.StatusOK, gin.H{"transaction": entry})
}

// ListUsers returns all registered users
// @Summary     List users
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.User]
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	users, err := h.userService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListTransactions returns the full ledger, filterable by type and status
// @Summary     List all transactions
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Filter by transaction type"
// @Param       status query string false "Filter by status"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Router      /admin/transactions [get]
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := parseTransactionFilter(c)
	transactions, err := h.transactionService.ListTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}
