package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "investclub/internal/errors"
	"investclub/internal/models"
	"investclub/internal/pagination"
)

// transactionService handles the ledger and the deposit/withdrawal flows.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// RequestDeposit records a pending deposit with its bank reference. The
// balance is only credited when a superadmin approves the entry.
func (s *transactionService) RequestDeposit(userID string, amount int64, utrNumber string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if utrNumber == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "UTR number is required")
	}

	entry := &models.Transaction{
		UserID:        userID,
		Type:          models.TransactionTypeDeposit,
		TransactionID: fmt.Sprintf("DEP_%s_%d", userID, time.Now().UnixNano()),
		Date:          time.Now(),
		Amount:        amount,
		Status:        models.TransactionStatusPending,
		UTRNumber:     utrNumber,
	}
	if err := s.db.Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrDuplicateTransaction, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// RequestWithdrawal places a hold on the requested amount and records a
// pending withdrawal. Approval completes the entry; rejection refunds the
// hold. The debit and the ledger entry commit together.
func (s *transactionService) RequestWithdrawal(userID string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND available_balance >= ?", userID, amount).
			Update("available_balance", gorm.Expr("available_balance - ?", amount))
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInsufficientBalance
		}

		entry = &models.Transaction{
			UserID:        userID,
			Type:          models.TransactionTypeWithdraw,
			TransactionID: fmt.Sprintf("WDR_%s_%d", userID, time.Now().UnixNano()),
			Date:          time.Now(),
			Amount:        amount,
			Status:        models.TransactionStatusPending,
		}
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Wrap(apperrors.ErrDuplicateTransaction, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ReviewTransaction settles a pending deposit or withdrawal.
func (s *transactionService) ReviewTransaction(transactionID string, approve bool) (*models.Transaction, error) {
	var reviewed *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry models.Transaction
		if err := tx.First(&entry, "id = ?", transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if entry.Type != models.TransactionTypeDeposit && entry.Type != models.TransactionTypeWithdraw {
			return apperrors.ErrInvalidTransactionType
		}
		if entry.Status != models.TransactionStatusPending {
			return apperrors.ErrTransactionNotPending
		}

		newStatus := models.TransactionStatusFailed
		if approve {
			newStatus = models.TransactionStatusCompleted
		}

		// Approved deposits credit the balance now; rejected withdrawals
		// release the hold placed at request time.
		if approve && entry.Type == models.TransactionTypeDeposit {
			if err := tx.Model(&models.User{}).Where("id = ?", entry.UserID).
				Update("available_balance", gorm.Expr("available_balance + ?", entry.Amount)).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if !approve && entry.Type == models.TransactionTypeWithdraw {
			if err := tx.Model(&models.User{}).Where("id = ?", entry.UserID).
				Update("available_balance", gorm.Expr("available_balance + ?", entry.Amount)).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Model(&entry).Update("status", newStatus).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		entry.Status = newStatus
		reviewed = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// GetUserTransactions retrieves a paginated, filtered ledger for one user.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	return s.paginateTransactions(base, page)
}

// ListTransactions retrieves a paginated, filtered ledger across all users.
func (s *transactionService) ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{})
	base = applyTransactionFilters(base, filter)

	return s.paginateTransactions(base, page)
}

func (s *transactionService) paginateTransactions(base *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	return q
}

// GetTransactionByID retrieves a ledger entry by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
