package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionType defines the type of credit transaction
type TransactionType string

const (
	TransactionTypeUnlock      TransactionType = "CONTENT_UNLOCK"
	TransactionTypeAnalysis    TransactionType = "ANALYSIS_UNLOCK"
	TransactionTypeAdminCredit TransactionType = "ADMIN_CREDIT"
	TransactionTypeAdminDebit  TransactionType = "ADMIN_DEBIT"
)

// TransactionStatus defines the status of a transaction
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// CreditTransaction tracks every movement of a user's credit balance
type CreditTransaction struct {
	gorm.Model
	UserID          uint              `gorm:"not null;index" json:"userId"`
	TransactionType TransactionType   `gorm:"type:varchar(50);not null" json:"transactionType"`
	Amount          uint              `gorm:"not null" json:"amount"`
	BalanceBefore   uint              `gorm:"not null" json:"balanceBefore"`
	BalanceAfter    uint              `gorm:"not null" json:"balanceAfter"`
	Status          TransactionStatus `gorm:"type:varchar(20);default:'COMPLETED'" json:"status"`
	Description     string            `gorm:"type:text" json:"description"`

	// Reference details (what the debit unlocked)
	ReferenceKey  string `gorm:"type:varchar(255)" json:"referenceKey"` // content key or chapter key
	ReferenceName string `gorm:"type:varchar(255)" json:"referenceName"`

	// Admin details (for manual credits/debits)
	AdminID uint   `gorm:"default:0" json:"adminId"`
	Reason  string `gorm:"type:text" json:"reason"`

	TransactionDate time.Time `gorm:"not null" json:"transactionDate"`
	IsDeleted       bool      `gorm:"default:false" json:"isDeleted"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
