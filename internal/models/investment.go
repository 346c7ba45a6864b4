package models

import "time"

// Investment represents a user's stake in a plan. DaysCompleted increases by
// exactly one per accrual cycle while IsActive holds; once it reaches the
// plan's duration the investment is deactivated and never credited again.
type Investment struct {
	Base
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID        string    `gorm:"type:uuid;not null;index" json:"plan_id"`
	Amount        int64     `gorm:"type:bigint;not null" json:"amount"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	DaysCompleted int       `gorm:"not null;default:0" json:"days_completed"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`

	// LastCreditedDay records the UTC day (days since the Unix epoch) of the
	// most recent daily credit. Zero means never credited. The accrual engine
	// refuses to credit the same investment twice within one day.
	LastCreditedDay int64 `gorm:"type:bigint;not null;default:0" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Plan Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}
