package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"investclub/internal/models"
	"investclub/internal/testutil"
)

// failingReferralService fails every commission fan-out, for exercising
// rollback of the per-investment credit unit.
type failingReferralService struct {
	ReferralServicer
}

func (s *failingReferralService) CreditCommission(tx *gorm.DB, sourceUserID string, amount int64, planID string) error {
	return errors.New("fan-out unavailable")
}

func newTestAccrualService(db *gorm.DB) AccrualServicer {
	return NewAccrualService(db, NewReferralService(db, testRates()))
}

func reloadInvestment(t *testing.T, db *gorm.DB, id string) *models.Investment {
	t.Helper()

	var inv models.Investment
	testutil.AssertNoError(t, db.First(&inv, "id = ?", id).Error)
	return &inv
}

func TestRunDailyAccrual(t *testing.T) {
	t.Run("credits_active_investment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		inv := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)

		result, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, user.ID); got != 500 {
			t.Errorf("expected balance 500, got %d", got)
		}

		updated := reloadInvestment(t, db, inv.ID)
		if updated.DaysCompleted != 1 {
			t.Errorf("expected 1 day completed, got %d", updated.DaysCompleted)
		}
		if !updated.IsActive {
			t.Error("investment should remain active")
		}

		var entry models.Transaction
		testutil.AssertNoError(t, db.
			Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeDailyReturn).
			First(&entry).Error)
		if entry.Amount != 500 {
			t.Errorf("expected ledger amount 500, got %d", entry.Amount)
		}
		if entry.Status != models.TransactionStatusCompleted {
			t.Errorf("expected completed status, got %s", entry.Status)
		}
		if entry.PlanID == nil || *entry.PlanID != plan.ID {
			t.Error("ledger entry should reference the plan")
		}

		if result.TotalUsersCredited != 1 {
			t.Errorf("expected 1 user credited, got %d", result.TotalUsersCredited)
		}
		if result.TotalCreditEvents != 1 {
			t.Errorf("expected 1 credit event, got %d", result.TotalCreditEvents)
		}
		if len(result.CreditedInvestments) != 1 {
			t.Fatalf("expected 1 report line, got %d", len(result.CreditedInvestments))
		}
		line := result.CreditedInvestments[0]
		if line.UserEmail != user.Email || line.PlanName != plan.Name || line.Amount != 500 {
			t.Errorf("unexpected report line: %+v", line)
		}
	})

	t.Run("final_day_credits_then_deactivates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 3)
		inv := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)
		testutil.AssertNoError(t, db.Model(inv).Update("days_completed", 2).Error)

		_, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, user.ID); got != 500 {
			t.Errorf("final day should still pay out, got balance %d", got)
		}

		updated := reloadInvestment(t, db, inv.ID)
		if updated.DaysCompleted != 3 {
			t.Errorf("expected 3 days completed, got %d", updated.DaysCompleted)
		}
		if updated.IsActive {
			t.Error("investment should be deactivated after the final payout")
		}
	})

	t.Run("completed_investment_not_credited", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 3)
		inv := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)
		testutil.AssertNoError(t, db.Model(inv).Updates(map[string]interface{}{
			"days_completed": 3,
			"is_active":      false,
		}).Error)

		result, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, user.ID); got != 0 {
			t.Errorf("expected no payout, got balance %d", got)
		}
		if result.TotalCreditEvents != 0 {
			t.Errorf("expected 0 credit events, got %d", result.TotalCreditEvents)
		}
	})

	t.Run("overdue_active_investment_deactivated_without_credit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 3)
		inv := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)
		// Completed its full term but was left active by a missed run.
		testutil.AssertNoError(t, db.Model(inv).Update("days_completed", 3).Error)

		_, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, user.ID); got != 0 {
			t.Errorf("expected no payout past the plan term, got balance %d", got)
		}
		if reloadInvestment(t, db, inv.ID).IsActive {
			t.Error("investment should have been deactivated")
		}
	})

	t.Run("same_day_rerun_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		inv := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)

		_, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)
		second, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if second.TotalCreditEvents != 0 {
			t.Errorf("rerun should credit nothing, got %d events", second.TotalCreditEvents)
		}
		if got := balanceOf(t, db, user.ID); got != 500 {
			t.Errorf("expected balance 500 after rerun, got %d", got)
		}
		if got := reloadInvestment(t, db, inv.ID).DaysCompleted; got != 1 {
			t.Errorf("expected 1 day completed after rerun, got %d", got)
		}
	})

	t.Run("next_day_credits_again", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		inv := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)

		_, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		// Pretend the last credit happened yesterday.
		yesterday := dayOfEpoch(time.Now()) - 1
		testutil.AssertNoError(t, db.Model(inv).Update("last_credited_day", yesterday).Error)

		_, err = svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, user.ID); got != 1000 {
			t.Errorf("expected balance 1000 after two days, got %d", got)
		}
		if got := reloadInvestment(t, db, inv.ID).DaysCompleted; got != 2 {
			t.Errorf("expected 2 days completed, got %d", got)
		}
	})

	t.Run("missing_plan_skips_investment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		good := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)
		orphan := testutil.CreateTestInvestment(t, db, user.ID, "00000000-0000-0000-0000-000000000000", 10000)

		result, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		// Only the healthy investment paid out; the orphan stayed untouched.
		if got := balanceOf(t, db, user.ID); got != 500 {
			t.Errorf("expected balance 500, got %d", got)
		}
		if result.TotalCreditEvents != 1 {
			t.Errorf("expected 1 credit event, got %d", result.TotalCreditEvents)
		}

		untouched := reloadInvestment(t, db, orphan.ID)
		if untouched.DaysCompleted != 0 || !untouched.IsActive {
			t.Errorf("orphaned investment should be untouched: %+v", untouched)
		}
		if got := reloadInvestment(t, db, good.ID).DaysCompleted; got != 1 {
			t.Errorf("healthy investment should still advance, got %d days", got)
		}
	})

	t.Run("multiple_investments_one_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		user := testutil.CreateTestUser(t, db)
		small := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		large := testutil.CreateTestPlan(t, db, 50000, 3000, 60)
		testutil.CreateTestInvestment(t, db, user.ID, small.ID, small.Invest)
		testutil.CreateTestInvestment(t, db, user.ID, large.ID, large.Invest)

		result, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, user.ID); got != 3500 {
			t.Errorf("expected balance 3500, got %d", got)
		}
		if result.TotalUsersCredited != 1 {
			t.Errorf("expected 1 user credited, got %d", result.TotalUsersCredited)
		}
		if result.TotalCreditEvents != 2 {
			t.Errorf("expected 2 credit events, got %d", result.TotalCreditEvents)
		}
	})

	t.Run("fans_out_referral_commissions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		referralSvc := NewReferralService(db, testRates())
		svc := NewAccrualService(db, referralSvc)

		users := buildReferralChain(t, db, referralSvc, 4)
		investor := users[3]

		plan := testutil.CreateTestPlan(t, db, 10000, 1000, 30)
		testutil.CreateTestInvestment(t, db, investor.ID, plan.ID, plan.Invest)

		_, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, investor.ID); got != 1000 {
			t.Errorf("investor: expected balance 1000, got %d", got)
		}
		if got := balanceOf(t, db, users[2].ID); got != 150 {
			t.Errorf("level 1 referrer: expected 150, got %d", got)
		}
		if got := balanceOf(t, db, users[1].ID); got != 80 {
			t.Errorf("level 2 referrer: expected 80, got %d", got)
		}
		if got := balanceOf(t, db, users[0].ID); got != 50 {
			t.Errorf("level 3 referrer: expected 50, got %d", got)
		}

		var entries []models.Transaction
		testutil.AssertNoError(t, db.
			Where("type = ? AND source_user_id = ?", models.TransactionTypeReferralCommission, investor.ID).
			Find(&entries).Error)
		if len(entries) != 3 {
			t.Errorf("expected 3 commission entries, got %d", len(entries))
		}
	})

	t.Run("fanout_failure_rolls_back_whole_unit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccrualService(db, &failingReferralService{})

		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		inv := testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)

		result, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		// Balance credit, investment advance, and ledger entry commit with
		// the fan-out; when it fails none of them persist.
		if got := balanceOf(t, db, user.ID); got != 0 {
			t.Errorf("expected balance 0 after rollback, got %d", got)
		}
		after := reloadInvestment(t, db, inv.ID)
		if after.DaysCompleted != 0 {
			t.Errorf("expected 0 days completed, got %d", after.DaysCompleted)
		}
		if after.LastCreditedDay != 0 {
			t.Errorf("expected last credited day 0, got %d", after.LastCreditedDay)
		}
		if !after.IsActive {
			t.Error("investment should remain active")
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.Transaction{}).
			Where("user_id = ?", user.ID).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected no ledger entries, got %d", count)
		}

		if result.TotalUsersCredited != 0 || result.TotalCreditEvents != 0 {
			t.Errorf("failed unit must not be reported as credited: %+v", result)
		}
	})

	t.Run("empty_database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAccrualService(db)

		result, err := svc.RunDailyAccrual()
		testutil.AssertNoError(t, err)

		if result.TotalUsersCredited != 0 || result.TotalCreditEvents != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
		if result.CreditedInvestments == nil {
			t.Error("report list should be non-nil")
		}
	})
}

func TestDayOfEpoch(t *testing.T) {
	epoch := time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := dayOfEpoch(epoch); got != 1 {
		t.Errorf("expected day 1, got %d", got)
	}

	// Same UTC day regardless of wall-clock zone.
	ny, _ := time.LoadLocation("America/New_York")
	local := time.Date(2025, 6, 1, 22, 0, 0, 0, ny)
	utc := local.UTC()
	if dayOfEpoch(local) != dayOfEpoch(utc) {
		t.Error("day number should be timezone independent")
	}
}
