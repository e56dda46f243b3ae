package models

import "time"

// PredictionRecord is one stored result of a submitted assessment.
// Records are immutable once written and listed newest first.
type PredictionRecord struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	ModelName   string    `gorm:"size:32;index;not null"` // diabetes / heart
	Input       string    `gorm:"type:text"`              // submitted payload, JSON
	Prediction  int       `gorm:"not null"`               // 0 = low risk, 1 = high risk
	Probability float64   `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
