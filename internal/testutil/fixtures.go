package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"investclub/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email, and
// unique referral code.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         fmt.Sprintf("Test User %d", nextID()),
		Email:        email,
		Password:     string(hash),
		Role:         models.RoleUser,
		ReferralCode: fmt.Sprintf("TU%06d", nextID()),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserWithBalance creates a user holding the given available
// balance (in the smallest currency unit).
func CreateTestUserWithBalance(t *testing.T, db *gorm.DB, balance int64) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("available_balance", balance).Error; err != nil {
		t.Fatalf("failed to set test user balance: %v", err)
	}
	user.AvailableBalance = balance
	return user
}

// CreateTestSuperadmin creates a user with the superadmin role.
func CreateTestSuperadmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("role", models.RoleSuperadmin).Error; err != nil {
		t.Fatalf("failed to promote test user: %v", err)
	}
	user.Role = models.RoleSuperadmin
	return user
}

// CreateTestPlan creates an active plan with the given economics.
func CreateTestPlan(t *testing.T, db *gorm.DB, invest, daily int64, days int) *models.Plan {
	t.Helper()

	plan := &models.Plan{
		Name:     fmt.Sprintf("Test Plan %d", nextID()),
		Invest:   invest,
		Daily:    daily,
		Total:    daily * int64(days),
		Days:     days,
		ROI:      float64(daily*int64(days)-invest) / float64(invest) * 100,
		IsActive: true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test plan: %v", err)
	}
	return plan
}

// CreateTestInvestment creates an active investment in the given plan.
func CreateTestInvestment(t *testing.T, db *gorm.DB, userID, planID string, amount int64) *models.Investment {
	t.Helper()

	inv := &models.Investment{
		UserID:    userID,
		PlanID:    planID,
		Amount:    amount,
		StartDate: time.Now().UTC(),
		IsActive:  true,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return inv
}

// CreateTestReferral creates one referral graph edge at the given level.
func CreateTestReferral(t *testing.T, db *gorm.DB, referrerID, referredID string, level int) *models.Referral {
	t.Helper()

	ref := &models.Referral{
		ReferrerID: referrerID,
		ReferredID: referredID,
		Level:      level,
	}
	if err := db.Create(ref).Error; err != nil {
		t.Fatalf("failed to create test referral: %v", err)
	}
	return ref
}
