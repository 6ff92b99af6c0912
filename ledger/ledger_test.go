package ledger

import (
	"edugate/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebit(t *testing.T) {
	t.Run("deducts the amount", func(t *testing.T) {
		user := models.User{Credits: 20}
		updated, err := Debit(user, 5, false)
		require.NoError(t, err)
		assert.Equal(t, uint(15), updated.Credits)
		// The input snapshot is untouched.
		assert.Equal(t, uint(20), user.Credits)
	})

	t.Run("exact balance drains to zero", func(t *testing.T) {
		updated, err := Debit(models.User{Credits: 5}, 5, false)
		require.NoError(t, err)
		assert.Equal(t, uint(0), updated.Credits)
	})

	t.Run("insufficient balance fails without partial debit", func(t *testing.T) {
		user := models.User{Credits: 4}
		updated, err := Debit(user, 5, false)
		require.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, uint(4), updated.Credits)
	})

	t.Run("zero amount is a no-op debit", func(t *testing.T) {
		updated, err := Debit(models.User{Credits: 0}, 0, false)
		require.NoError(t, err)
		assert.Equal(t, uint(0), updated.Credits)
	})

	t.Run("persists auto deduct preference on request", func(t *testing.T) {
		updated, err := Debit(models.User{Credits: 10}, 5, true)
		require.NoError(t, err)
		assert.True(t, updated.AutoDeduct)

		updated, err = Debit(models.User{Credits: 10}, 5, false)
		require.NoError(t, err)
		assert.False(t, updated.AutoDeduct)
	})

	t.Run("preference untouched when debit fails", func(t *testing.T) {
		updated, err := Debit(models.User{Credits: 1}, 5, true)
		require.ErrorIs(t, err, ErrInsufficientBalance)
		assert.False(t, updated.AutoDeduct)
	})
}
