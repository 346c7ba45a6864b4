package models

// Referral is one edge of the referral graph: ReferredID was recruited into
// ReferrerID's downline at the given depth (1 = direct referral, 3 = deepest
// level that earns commission). Rows are append-only; a user appears at most
// once per level.
type Referral struct {
	Base
	ReferrerID string `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferredID string `gorm:"type:uuid;not null;uniqueIndex:idx_referrals_referred_level" json:"referred_id"`
	Level      int    `gorm:"not null;uniqueIndex:idx_referrals_referred_level" json:"level"`

	Referrer User `gorm:"foreignKey:ReferrerID" json:"-"`
	Referred User `gorm:"foreignKey:ReferredID" json:"-"`
}
