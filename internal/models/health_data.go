package models

import "time"

// HealthDataPoint is one row of lab-derived metrics bulk imported by the
// user (complete blood count values). Metric fields are nullable: a
// malformed CSV cell imports as NULL and stays NULL through listing,
// charting and export.
type HealthDataPoint struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;not null"`
	RecordedAt time.Time `gorm:"index;not null"`
	WBC        *float64  `gorm:"column:wbc"`
	RBC        *float64  `gorm:"column:rbc"`
	HGB        *float64  `gorm:"column:hgb"`
	HCT        *float64  `gorm:"column:hct"`
	PLT        *float64  `gorm:"column:plt"`
	CreatedAt  time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
