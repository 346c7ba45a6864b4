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

// investmentService handles plan purchases.
type investmentService struct {
	db          *gorm.DB
	planService PlanServicer
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB, planService PlanServicer) InvestmentServicer {
	return &investmentService{db: db, planService: planService}
}

// InvestInPlan commits the plan's invest amount from the user's available
// balance, opens a new investment, and records an `investment` ledger entry.
// The debit, investment row, and ledger entry commit or roll back together.
func (s *investmentService) InvestInPlan(userID, planID string) (*models.Investment, error) {
	plan, err := s.planService.GetPlanByID(planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, apperrors.ErrPlanInactive
	}

	var investment *models.Investment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if user.AvailableBalance < plan.Invest {
			return apperrors.ErrInsufficientBalance
		}

		// Guarded atomic debit: the WHERE clause re-checks the balance so a
		// concurrent spend cannot push it negative.
		res := tx.Model(&models.User{}).
			Where("id = ? AND available_balance >= ?", userID, plan.Invest).
			Updates(map[string]interface{}{
				"available_balance": gorm.Expr("available_balance - ?", plan.Invest),
				"total_invested":    gorm.Expr("total_invested + ?", plan.Invest),
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInsufficientBalance
		}

		investment = &models.Investment{
			UserID:    userID,
			PlanID:    plan.ID,
			Amount:    plan.Invest,
			StartDate: time.Now(),
			IsActive:  true,
		}
		if err := tx.Create(investment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		entry := &models.Transaction{
			UserID:        userID,
			Type:          models.TransactionTypeInvestment,
			TransactionID: fmt.Sprintf("INVEST_%s_%d", userID, time.Now().UnixNano()),
			Date:          time.Now(),
			Amount:        plan.Invest,
			Status:        models.TransactionStatusCompleted,
			PlanID:        &plan.ID,
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
	return investment, nil
}

// GetUserInvestments returns a user's investments, newest first, with plans
// preloaded.
func (s *investmentService) GetUserInvestments(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	base := s.db.Model(&models.Investment{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Plan").
		Order("created_at DESC").
		Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}
