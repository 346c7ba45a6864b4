package models

// Plan represents an investment plan offered by the club. Amounts are in the
// smallest currency unit. Plans are read-only to the accrual engine; only
// superadmins create or modify them.
type Plan struct {
	Base
	Name     string  `gorm:"not null" json:"name"`
	Invest   int64   `gorm:"type:bigint;not null" json:"invest"`
	Daily    int64   `gorm:"type:bigint;not null" json:"daily"`
	Total    int64   `gorm:"type:bigint;not null" json:"total"`
	Days     int     `gorm:"not null" json:"days"`
	ROI      float64 `gorm:"not null" json:"roi"`
	Benefits string  `json:"benefits"`
	Badge    string  `json:"badge,omitempty"`
	IsActive bool    `gorm:"default:true" json:"is_active"`
}
