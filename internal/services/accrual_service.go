package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "investclub/internal/errors"
	"investclub/internal/logger"
	"investclub/internal/models"
)

// accrualService implements the daily-return batch engine.
type accrualService struct {
	db              *gorm.DB
	referralService ReferralServicer
}

// NewAccrualService creates a new AccrualServicer.
func NewAccrualService(db *gorm.DB, referralService ReferralServicer) AccrualServicer {
	return &accrualService{db: db, referralService: referralService}
}

// dayOfEpoch returns the UTC day number for t. It keys the once-per-day
// idempotency check on investments.
func dayOfEpoch(t time.Time) int64 {
	return t.UTC().Unix() / 86400
}

// RunDailyAccrual processes every user that holds at least one investment.
// For each active investment it credits the plan's daily payout, advances
// days_completed, deactivates finished investments, appends a daily_return
// ledger entry, and fans out referral commissions. Each investment's credit
// plus fan-out is one database transaction; a failure in one user or
// investment is logged and skipped without aborting the batch.
func (s *accrualService) RunDailyAccrual() (*AccrualResult, error) {
	var users []models.User
	if err := s.db.
		Where("EXISTS (SELECT 1 FROM investments WHERE investments.user_id = users.id)").
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &AccrualResult{CreditedInvestments: []CreditedInvestment{}}
	today := dayOfEpoch(time.Now())

	for i := range users {
		credited, err := s.processUser(&users[i], today, result)
		if err != nil {
			logger.Get().Errorw("accrual: skipping user after error",
				"user_id", users[i].ID,
				"error", err.Error(),
			)
			continue
		}
		if credited > 0 {
			result.TotalUsersCredited++
		}
	}

	logger.Get().Infow("daily accrual completed",
		"users_credited", result.TotalUsersCredited,
		"credit_events", result.TotalCreditEvents,
	)
	return result, nil
}

// processUser advances all of one user's investments, in stored order, and
// returns how many were credited.
func (s *accrualService) processUser(user *models.User, today int64, result *AccrualResult) (int, error) {
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", user.ID).
		Order("created_at").
		Find(&investments).Error; err != nil {
		return 0, err
	}

	credited := 0
	for i := range investments {
		inv := &investments[i]
		if !inv.IsActive {
			continue
		}

		var plan models.Plan
		if err := s.db.First(&plan, "id = ?", inv.PlanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Data-integrity gap: the plan was deleted from the catalog.
				// Skip the investment untouched rather than failing the batch.
				logger.Get().Warnw("accrual: plan missing, skipping investment",
					"investment_id", inv.ID,
					"plan_id", inv.PlanID,
				)
				continue
			}
			return credited, err
		}

		// Guard against a prior missed deactivation.
		if inv.DaysCompleted >= plan.Days {
			if err := s.db.Model(&models.Investment{}).Where("id = ?", inv.ID).
				Update("is_active", false).Error; err != nil {
				return credited, err
			}
			inv.IsActive = false
			continue
		}

		// Already credited within this day: replaying the batch is a no-op.
		if inv.LastCreditedDay >= today {
			continue
		}

		if err := s.creditInvestment(user, inv, &plan, today); err != nil {
			logger.Get().Errorw("accrual: skipping investment after error",
				"user_id", user.ID,
				"investment_id", inv.ID,
				"error", err.Error(),
			)
			continue
		}

		credited++
		result.TotalCreditEvents++
		result.CreditedInvestments = append(result.CreditedInvestments, CreditedInvestment{
			UserEmail: user.Email,
			PlanName:  plan.Name,
			Amount:    plan.Daily,
		})
	}

	return credited, nil
}

// creditInvestment applies one day's payout for one investment. The balance
// increment, investment advance, ledger entry, and referral fan-out commit or
// roll back together.
func (s *accrualService) creditInvestment(user *models.User, inv *models.Investment, plan *models.Plan, today int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("available_balance", gorm.Expr("available_balance + ?", plan.Daily)).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"days_completed":    inv.DaysCompleted + 1,
			"last_credited_day": today,
		}
		// This payout was the final one.
		if inv.DaysCompleted+1 >= plan.Days {
			updates["is_active"] = false
		}
		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		entry := &models.Transaction{
			UserID:        user.ID,
			Type:          models.TransactionTypeDailyReturn,
			TransactionID: fmt.Sprintf("DAILY_%s_%s_%d", user.ID, plan.ID, time.Now().UnixNano()),
			Date:          time.Now(),
			Amount:        plan.Daily,
			Status:        models.TransactionStatusCompleted,
			PlanID:        &plan.ID,
		}
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Wrap(apperrors.ErrDuplicateTransaction, err)
			}
			return err
		}

		return s.referralService.CreditCommission(tx, user.ID, plan.Daily, plan.ID)
	})
	if err != nil {
		return err
	}

	inv.DaysCompleted++
	inv.LastCreditedDay = today
	if inv.DaysCompleted >= plan.Days {
		inv.IsActive = false
	}
	return nil
}
