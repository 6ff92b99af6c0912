package models

import "gorm.io/gorm"

// UsageLog is an append-only record of study activity. The per-user history
// is capped; the oldest rows beyond the cap are trimmed after each append.
type UsageLog struct {
	gorm.Model
	UserID          uint   `gorm:"not null;index" json:"userId"`
	Activity        string `gorm:"type:varchar(50);not null" json:"activity"` // CONTENT_VIEW, QUIZ_ATTEMPT
	ReferenceKey    string `gorm:"type:varchar(255)" json:"referenceKey"`
	DurationSeconds int    `gorm:"default:0" json:"durationSeconds"`
}
