package services

import (
	"gorm.io/gorm"

	"investclub/internal/models"
	"investclub/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
}

// ReferralOverview summarizes a user's downline and commission earnings.
type ReferralOverview struct {
	ReferralCode string                 `json:"referral_code"`
	Levels       []ReferralLevelSummary `json:"levels"`
}

// ReferralLevelSummary holds downline stats for one referral level.
type ReferralLevelSummary struct {
	Level      int   `json:"level"`
	Referrals  int64 `json:"referrals"`
	Commission int64 `json:"commission"`
}

// ReferralServicer defines the contract for referral-graph construction and
// commission fan-out.
type ReferralServicer interface {
	// ProcessReferral links a newly registered user into up to three ancestor
	// levels of referrers. It runs at most once per user; a referral code
	// that matches no user yields ErrInvalidReferralCode.
	ProcessReferral(newUserID, referralCode string) error

	// CreditCommission walks up to three referrer levels from the source user
	// and credits each a percentage of the given amount, recording one ledger
	// entry per credited level. It participates in the caller's database
	// transaction.
	CreditCommission(tx *gorm.DB, sourceUserID string, amount int64, planID string) error

	GetOverview(userID string) (*ReferralOverview, error)
}

// CreditedInvestment is one line of the accrual run report.
type CreditedInvestment struct {
	UserEmail string `json:"user_email"`
	PlanName  string `json:"plan_name"`
	Amount    int64  `json:"amount"`
}

// AccrualResult summarizes one daily accrual run.
type AccrualResult struct {
	TotalUsersCredited  int                  `json:"total_users_credited"`
	TotalCreditEvents   int                  `json:"total_credit_events"`
	CreditedInvestments []CreditedInvestment `json:"credited_investments"`
}

// AccrualServicer defines the contract for the daily-return batch engine.
type AccrualServicer interface {
	// RunDailyAccrual advances every active investment by one day, credits
	// the plan's daily payout, fans out referral commissions, and returns an
	// itemized summary. Individual user or investment failures are logged and
	// skipped; they never abort the batch.
	RunDailyAccrual() (*AccrualResult, error)
}

// PlanServicer defines the contract for the investment plan catalog.
type PlanServicer interface {
	CreatePlan(name string, invest, daily, total int64, days int, roi float64, benefits, badge string) (*models.Plan, error)
	UpdatePlan(planID string, name *string, invest, daily, total *int64, days *int, roi *float64, benefits, badge *string, isActive *bool) (*models.Plan, error)
	DeletePlan(planID string) error
	GetPlanByID(planID string) (*models.Plan, error)
	ListActivePlans() ([]models.Plan, error)
	ListPlans(page pagination.PageRequest) (*pagination.PageResponse[models.Plan], error)
}

// InvestmentServicer defines the contract for plan purchases.
type InvestmentServicer interface {
	InvestInPlan(userID, planID string) (*models.Investment, error)
	GetUserInvestments(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
}

// TransactionFilter holds optional filter parameters for listing ledger entries.
type TransactionFilter struct {
	Type   *models.TransactionType
	Status *models.TransactionStatus
}

// TransactionServicer defines the contract for the transaction ledger and the
// deposit/withdrawal request flows.
type TransactionServicer interface {
	RequestDeposit(userID string, amount int64, utrNumber string) (*models.Transaction, error)
	RequestWithdrawal(userID string, amount int64) (*models.Transaction, error)
	// ReviewTransaction completes or fails a pending deposit/withdrawal.
	// Approving a deposit credits the balance; rejecting a withdrawal
	// restores the held amount.
	ReviewTransaction(transactionID string, approve bool) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
