package models

// UserRole represents the role of a user
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleSuperadmin UserRole = "superadmin"
)

// User represents a member of the investment club. All monetary amounts are
// stored in the smallest currency unit.
type User struct {
	Base
	Name             string   `gorm:"not null" json:"name"`
	Email            string   `gorm:"uniqueIndex;not null" json:"email"`
	Password         string   `gorm:"not null" json:"-"`
	Role             UserRole `gorm:"not null;default:'user'" json:"role"`
	AvailableBalance int64    `gorm:"type:bigint;not null;default:0" json:"available_balance"`
	TotalInvested    int64    `gorm:"type:bigint;not null;default:0" json:"total_invested"`

	// ReferralCode is the user's own 8-character code, assigned at
	// registration. ReferredBy holds the referral code of the inviter and is
	// set at most once, also at registration.
	ReferralCode string `gorm:"size:8;uniqueIndex" json:"referral_code"`
	ReferredBy   string `gorm:"size:8;index" json:"referred_by,omitempty"`

	Investments  []Investment  `gorm:"foreignKey:UserID" json:"investments,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
