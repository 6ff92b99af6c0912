package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription tiers and levels
const (
	TierWeekly   = "WEEKLY"
	TierMonthly  = "MONTHLY"
	TierYearly   = "YEARLY"
	TierLifetime = "LIFETIME"

	LevelBasic = "BASIC"
	LevelUltra = "ULTRA"
)

type User struct {
	gorm.Model
	ProfileImage       string `gorm:"default:''"`
	Name               string `gorm:"default:''"`
	Email              string `gorm:"unique;not null"`
	Role               string `gorm:"default:'LEARNER'"` // LEARNER, ADMIN
	Password           string `gorm:"not null"`
	Credits            uint   `gorm:"default:0"` // virtual-credit balance, never negative
	IsPremium          bool   `gorm:"default:false"`
	SubscriptionTier   string `gorm:"default:''"` // WEEKLY, MONTHLY, YEARLY, LIFETIME
	SubscriptionLevel  string `gorm:"default:''"` // BASIC, ULTRA
	SubscriptionExpiry *time.Time
	AutoDeduct         bool      `gorm:"default:false"` // skip the confirmation step on paid unlocks
	ActiveMode         string    `gorm:"default:'STANDARD'"`
	ReminderSent       bool      `gorm:"default:false"` // expiry reminder mailed for current subscription
	LastLogin          time.Time `gorm:"default:NULL"`
	IsDeleted          bool      `gorm:"default:false"`
}

// HasActiveSubscription reports whether the subscription is unexpired at the given instant.
func (u User) HasActiveSubscription(now time.Time) bool {
	if u.SubscriptionTier == TierLifetime && u.SubscriptionLevel != "" {
		return true
	}
	return u.SubscriptionExpiry != nil && now.Before(*u.SubscriptionExpiry)
}

// SubjectStrength is the per-subject correct/total tally, appended to after every submission.
type SubjectStrength struct {
	gorm.Model
	UserID  uint   `gorm:"not null;uniqueIndex:idx_strength_user_subject" json:"userId"`
	Subject string `gorm:"type:varchar(100);not null;uniqueIndex:idx_strength_user_subject" json:"subject"`
	Correct uint   `gorm:"default:0" json:"correct"`
	Total   uint   `gorm:"default:0" json:"total"`
}

// SubjectProgress tracks the unlocked chapter index per subject and MCQs
// solved toward the next unlock. Solved rolls over at 100, one chapter at a time.
type SubjectProgress struct {
	gorm.Model
	UserID       uint   `gorm:"not null;uniqueIndex:idx_progress_user_subject" json:"userId"`
	Subject      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_progress_user_subject" json:"subject"`
	ChapterIndex uint   `gorm:"default:0" json:"chapterIndex"`
	Solved       uint   `gorm:"default:0" json:"solved"`
}
