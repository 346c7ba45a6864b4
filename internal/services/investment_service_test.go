package services

import (
	"testing"

	"investclub/internal/models"
	"investclub/internal/pagination"
	"investclub/internal/testutil"
)

func TestInvestInPlan(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, NewPlanService(db))

		user := testutil.CreateTestUserWithBalance(t, db, 15000)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)

		inv, err := svc.InvestInPlan(user.ID, plan.ID)
		testutil.AssertNoError(t, err)

		if inv.Amount != 10000 {
			t.Errorf("expected amount 10000, got %d", inv.Amount)
		}
		if !inv.IsActive || inv.DaysCompleted != 0 {
			t.Errorf("new investment should be active with zero days: %+v", inv)
		}

		var updated models.User
		testutil.AssertNoError(t, db.First(&updated, "id = ?", user.ID).Error)
		if updated.AvailableBalance != 5000 {
			t.Errorf("expected balance 5000 after debit, got %d", updated.AvailableBalance)
		}
		if updated.TotalInvested != 10000 {
			t.Errorf("expected total invested 10000, got %d", updated.TotalInvested)
		}

		var entry models.Transaction
		testutil.AssertNoError(t, db.
			Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeInvestment).
			First(&entry).Error)
		if entry.Amount != 10000 || entry.Status != models.TransactionStatusCompleted {
			t.Errorf("unexpected ledger entry: %+v", entry)
		}
	})

	t.Run("insufficient_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, NewPlanService(db))

		user := testutil.CreateTestUserWithBalance(t, db, 9999)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)

		_, err := svc.InvestInPlan(user.ID, plan.ID)
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")

		// Failed purchase must leave no trace.
		var updated models.User
		testutil.AssertNoError(t, db.First(&updated, "id = ?", user.ID).Error)
		if updated.AvailableBalance != 9999 {
			t.Errorf("balance should be untouched, got %d", updated.AvailableBalance)
		}
		var count int64
		testutil.AssertNoError(t, db.Model(&models.Investment{}).Where("user_id = ?", user.ID).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected no investments, got %d", count)
		}
	})

	t.Run("inactive_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, NewPlanService(db))

		user := testutil.CreateTestUserWithBalance(t, db, 20000)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		testutil.AssertNoError(t, db.Model(plan).Update("is_active", false).Error)

		_, err := svc.InvestInPlan(user.ID, plan.ID)
		testutil.AssertAppError(t, err, "PLAN_INACTIVE")
	})

	t.Run("plan_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, NewPlanService(db))

		user := testutil.CreateTestUserWithBalance(t, db, 20000)
		_, err := svc.InvestInPlan(user.ID, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "PLAN_NOT_FOUND")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, NewPlanService(db))

		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
		_, err := svc.InvestInPlan("00000000-0000-0000-0000-000000000000", plan.ID)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("repeat_purchases_same_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, NewPlanService(db))

		user := testutil.CreateTestUserWithBalance(t, db, 30000)
		plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)

		_, err := svc.InvestInPlan(user.ID, plan.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.InvestInPlan(user.ID, plan.ID)
		testutil.AssertNoError(t, err)

		var count int64
		testutil.AssertNoError(t, db.Model(&models.Investment{}).Where("user_id = ?", user.ID).Count(&count).Error)
		if count != 2 {
			t.Errorf("expected 2 separate investments, got %d", count)
		}
	})
}

func TestGetUserInvestments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewInvestmentService(db, NewPlanService(db))

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	plan := testutil.CreateTestPlan(t, db, 10000, 500, 30)
	testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)
	testutil.CreateTestInvestment(t, db, user.ID, plan.ID, plan.Invest)
	testutil.CreateTestInvestment(t, db, other.ID, plan.ID, plan.Invest)

	page, err := svc.GetUserInvestments(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 2 {
		t.Errorf("expected 2 investments, got %d", page.TotalItems)
	}
	for _, inv := range page.Data {
		if inv.Plan.ID != plan.ID {
			t.Errorf("expected plan preloaded, got %+v", inv.Plan)
		}
	}
}
