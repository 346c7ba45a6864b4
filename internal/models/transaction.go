package models

import "time"

// TransactionType represents the type of ledger entry
type TransactionType string

const (
	TransactionTypeDeposit            TransactionType = "deposit"
	TransactionTypeWithdraw           TransactionType = "withdraw"
	TransactionTypeInvestment         TransactionType = "investment"
	TransactionTypeDailyReturn        TransactionType = "daily_return"
	TransactionTypeReferralCommission TransactionType = "referral_commission"
)

// TransactionStatus represents the settlement state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger entry recording a single money movement.
// TransactionID is synthesized at creation time and globally unique. The only
// permitted mutation is the pending→completed/failed status transition of
// deposit and withdrawal entries during admin review.
type Transaction struct {
	Base
	UserID        string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          TransactionType   `gorm:"not null;index" json:"type"`
	TransactionID string            `gorm:"uniqueIndex;not null" json:"transaction_id"`
	Date          time.Time         `gorm:"not null" json:"date"`
	Amount        int64             `gorm:"type:bigint;not null" json:"amount"`
	Status        TransactionStatus `gorm:"not null;default:'pending'" json:"status"`

	// PlanID links daily returns, commissions, and investments back to the
	// plan they came from. SourceUserID traces a commission entry to the user
	// whose daily return generated it.
	PlanID       *string `gorm:"type:uuid" json:"plan_id,omitempty"`
	SourceUserID *string `gorm:"type:uuid" json:"source_user_id,omitempty"`

	// UTRNumber is the bank reference supplied with manual deposit requests.
	UTRNumber string `json:"utr_number,omitempty"`

	User User  `gorm:"foreignKey:UserID" json:"-"`
	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}
