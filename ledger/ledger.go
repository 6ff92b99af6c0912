// Package ledger applies credit debits to user snapshots. Debit has value
// semantics so the decision and the commit stay separate steps: the caller
// persists the returned snapshot only once the whole unlock is confirmed.
package ledger

import (
	"edugate/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrInsufficientBalance means the user cannot cover the amount. The original
// snapshot is untouched; no partial debit ever happens.
var ErrInsufficientBalance = errors.New("insufficient credit balance")

// Debit returns a new user snapshot with the amount deducted. When
// enableAutoDeduct is set the returned snapshot also persists the user's
// auto-deduct preference.
func Debit(user models.User, amount uint, enableAutoDeduct bool) (models.User, error) {
	if user.Credits < amount {
		return user, ErrInsufficientBalance
	}
	user.Credits -= amount
	if enableAutoDeduct {
		user.AutoDeduct = true
	}
	return user, nil
}

// RecordDebit debits the user and writes the updated snapshot plus a
// balance-before/after transaction row inside the given gorm transaction.
// The caller owns commit/rollback, so a failed unlock after a successful
// debit can never be observed.
func RecordDebit(tx *gorm.DB, user *models.User, amount uint, txnType models.TransactionType, referenceKey, description string, enableAutoDeduct bool) (*models.CreditTransaction, error) {
	updated, err := Debit(*user, amount, enableAutoDeduct)
	if err != nil {
		return nil, err
	}

	transaction := models.CreditTransaction{
		UserID:          user.ID,
		TransactionType: txnType,
		Amount:          amount,
		BalanceBefore:   user.Credits,
		BalanceAfter:    updated.Credits,
		Status:          models.TransactionStatusCompleted,
		Description:     description,
		ReferenceKey:    referenceKey,
		TransactionDate: time.Now(),
	}

	if err := tx.Create(&transaction).Error; err != nil {
		return nil, err
	}
	if err := tx.Save(&updated).Error; err != nil {
		return nil, err
	}

	*user = updated
	return &transaction, nil
}
