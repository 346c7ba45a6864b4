package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"investclub/internal/config"
	apperrors "investclub/internal/errors"
	"investclub/internal/models"
)

// maxReferralDepth is how far up the referrer chain both the graph builder
// and the commission fan-out walk.
const maxReferralDepth = 3

// referralService handles referral-graph construction and commission fan-out.
type referralService struct {
	db    *gorm.DB
	rates config.CommissionRates
}

// NewReferralService creates a new ReferralServicer with the given commission
// rates.
func NewReferralService(db *gorm.DB, rates config.CommissionRates) ReferralServicer {
	return &referralService{db: db, rates: rates}
}

// ProcessReferral links a newly registered user into the referral graph. The
// direct referrer is resolved by code; the walk then follows each referrer's
// own ReferredBy code up to three levels, stopping silently at the first code
// that no longer resolves. The whole linking sequence runs in one database
// transaction, so a retried call either completes fully or changes nothing.
func (s *referralService) ProcessReferral(newUserID, referralCode string) error {
	if referralCode == "" {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var referrer models.User
		if err := tx.Where("referral_code = ?", referralCode).First(&referrer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInvalidReferralCode
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var newUser models.User
		if err := tx.First(&newUser, "id = ?", newUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// ReferredBy is set exactly once, at registration.
		if newUser.ReferredBy != "" {
			return apperrors.ErrAlreadyReferred
		}
		if referrer.ID == newUser.ID {
			return apperrors.WithMessage(apperrors.ErrInvalidReferralCode, "Users cannot refer themselves")
		}

		if err := tx.Model(&models.User{}).Where("id = ?", newUserID).
			Update("referred_by", referralCode).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		current := &referrer
		for level := 1; level <= maxReferralDepth; level++ {
			edge := &models.Referral{
				ReferrerID: current.ID,
				ReferredID: newUserID,
				Level:      level,
			}
			if err := tx.Create(edge).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			if current.ReferredBy == "" {
				break
			}
			var upline models.User
			if err := tx.Where("referral_code = ?", current.ReferredBy).First(&upline).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Broken chain ends propagation at this depth, not an error.
					break
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			current = &upline
		}

		return nil
	})
	return err
}

// CreditCommission distributes percentage commissions for one daily-return
// credit up to three referrer levels. A referral code that no longer resolves
// truncates the walk; already-credited levels stand. Balance updates are
// atomic increments, and the ledger entry for each level carries the source
// user for provenance.
func (s *referralService) CreditCommission(tx *gorm.DB, sourceUserID string, amount int64, planID string) error {
	var source models.User
	if err := tx.First(&source, "id = ?", sourceUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if source.ReferredBy == "" {
		return nil
	}

	refCode := source.ReferredBy
	for level := 1; level <= maxReferralDepth; level++ {
		var referrer models.User
		if err := tx.Where("referral_code = ?", refCode).First(&referrer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		commission := int64(math.Round(float64(amount) * s.rates.Rate(level) / 100))
		if commission > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", referrer.ID).
				Update("available_balance", gorm.Expr("available_balance + ?", commission)).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			entry := &models.Transaction{
				UserID:        referrer.ID,
				Type:          models.TransactionTypeReferralCommission,
				TransactionID: fmt.Sprintf("REFCOMM_%s_%s_%d", referrer.ID, sourceUserID, time.Now().UnixNano()),
				Date:          time.Now(),
				Amount:        commission,
				Status:        models.TransactionStatusCompleted,
				PlanID:        &planID,
				SourceUserID:  &sourceUserID,
			}
			if err := tx.Create(entry).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperrors.Wrap(apperrors.ErrDuplicateTransaction, err)
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		refCode = referrer.ReferredBy
		if refCode == "" {
			break
		}
	}

	return nil
}

// GetOverview returns per-level downline counts and commission totals.
func (s *referralService) GetOverview(userID string) (*ReferralOverview, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	overview := &ReferralOverview{ReferralCode: user.ReferralCode}
	for level := 1; level <= maxReferralDepth; level++ {
		var referrals int64
		if err := s.db.Model(&models.Referral{}).
			Where("referrer_id = ? AND level = ?", userID, level).
			Count(&referrals).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Commission totals per level come from joining each commission's
		// source user back through the referral edges.
		var commission int64
		err := s.db.Model(&models.Transaction{}).
			Joins("JOIN referrals ON referrals.referred_id = transactions.source_user_id").
			Where("transactions.user_id = ? AND transactions.type = ? AND referrals.referrer_id = ? AND referrals.level = ?",
				userID, models.TransactionTypeReferralCommission, userID, level).
			Select("COALESCE(SUM(transactions.amount), 0)").
			Scan(&commission).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		overview.Levels = append(overview.Levels, ReferralLevelSummary{
			Level:      level,
			Referrals:  referrals,
			Commission: commission,
		})
	}

	return overview, nil
}
