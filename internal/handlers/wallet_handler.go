package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "investclub/internal/errors"
	"investclub/internal/models"
	"investclub/internal/pagination"
	"investclub/internal/services"
)

// WalletHandler handles deposit/withdrawal requests and ledger history.
type WalletHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *WalletHandler {
	return &WalletHandler{transactionService: transactionService, auditService: auditService}
}

// DepositRequest represents the request payload for a manual deposit
type DepositRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	UTRNumber string `json:"utr_number" binding:"required,max=50"`
}

// RequestDeposit records a pending deposit awaiting admin review
// @Summary     Request a deposit
// @Tags        wallet
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DepositRequest true "Deposit details"
// @Success     201 {object} models.Transaction "Pending deposit recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /wallet/deposits [post]
func (h *WalletHandler) RequestDeposit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.transactionService.RequestDeposit(userID, req.Amount, req.UTRNumber)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REQUEST_DEPOSIT", "transaction", entry.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"transaction": entry})
}

// WithdrawalRequest represents the request payload for a withdrawal
type WithdrawalRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// RequestWithdrawal places a hold and records a pending withdrawal
// @Summary     Request a withdrawal
// @Tags        wallet
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body WithdrawalRequest true "Withdrawal details"
// @Success     201 {object} models.Transaction "Pending withdrawal recorded"
// @Failure     400 {object} ErrorResponse "Insufficient balance"
// @Router      /wallet/withdrawals [post]
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.transactionService.RequestWithdrawal(userID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REQUEST_WITHDRAWAL", "transaction", entry.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"transaction": entry})
}

// ListTransactions returns the user's ledger history
// @Summary     List own transactions
// @Tags        wallet
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Filter by transaction type"
// @Param       status query string false "Filter by status"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Router      /wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
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

	filter := parseTransactionFilter(c)
	transactions, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// parseTransactionFilter reads optional type/status query filters.
func parseTransactionFilter(c *gin.Context) services.TransactionFilter {
	var filter services.TransactionFilter
	if t := c.Query("type"); t != "" {
		txType := models.TransactionType(t)
		filter.Type = &txType
	}
	if s := c.Query("status"); s != "" {
		status := models.TransactionStatus(s)
		filter.Status = &status
	}
	return filter
}
