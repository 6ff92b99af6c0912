package models

import (
	"time"

	"gorm.io/gorm"
)

// UnlockToken is a single-use handle issued when an entitlement decision
// requires user confirmation. Consuming it debits and unlocks in one
// transaction; a token is never honored twice.
type UnlockToken struct {
	gorm.Model
	Token      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	ContentKey string    `gorm:"type:varchar(255);not null" json:"contentKey"`
	Mode       string    `gorm:"type:varchar(20);not null" json:"mode"`
	Cost       uint      `gorm:"not null" json:"cost"`
	Purpose    string    `gorm:"type:varchar(50);default:'CONTENT_UNLOCK'" json:"purpose"`
	ExpiresAt  time.Time `gorm:"not null" json:"expiresAt"`
	Consumed   bool      `gorm:"default:false" json:"consumed"`
}
