package entitlement

import (
	"edugate/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPricing = Pricing{DefaultStandard: 5, DefaultCompetitive: 10}

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }

func subscriber(level, tier string, daysLeft int) models.User {
	expiry := time.Now().Add(time.Duration(daysLeft) * 24 * time.Hour)
	return models.User{
		Role:               "LEARNER",
		IsPremium:          true,
		SubscriptionLevel:  level,
		SubscriptionTier:   tier,
		SubscriptionExpiry: &expiry,
	}
}

func TestEvaluatePriorityOrder(t *testing.T) {
	now := time.Now()
	paid := models.ContentItem{Tag: strPtr(models.TagUltra), Price: uintPtr(5)}

	t.Run("admin always granted", func(t *testing.T) {
		d := Evaluate(models.User{Role: "ADMIN"}, paid, models.ModeStandard, now, testPricing)
		assert.Equal(t, Decision{Granted: true}, d)
	})

	t.Run("free tag granted", func(t *testing.T) {
		item := models.ContentItem{Tag: strPtr(models.TagFree), Price: uintPtr(9)}
		d := Evaluate(models.User{Role: "LEARNER"}, item, models.ModeStandard, now, testPricing)
		assert.Equal(t, Decision{Granted: true}, d)
	})

	t.Run("price zero wins over paid tag", func(t *testing.T) {
		item := models.ContentItem{Tag: strPtr(models.TagUltra), Price: uintPtr(0)}
		d := Evaluate(models.User{Role: "LEARNER"}, item, models.ModeStandard, now, testPricing)
		assert.Equal(t, Decision{Granted: true}, d)
	})

	t.Run("no subscription falls through to paid", func(t *testing.T) {
		d := Evaluate(models.User{Role: "LEARNER"}, paid, models.ModeStandard, now, testPricing)
		assert.Equal(t, Decision{Granted: false, Cost: 5, RequiresConfirmation: true}, d)
	})

	t.Run("auto deduct skips confirmation", func(t *testing.T) {
		d := Evaluate(models.User{Role: "LEARNER", AutoDeduct: true}, paid, models.ModeStandard, now, testPricing)
		assert.Equal(t, Decision{Granted: false, Cost: 5, RequiresConfirmation: false}, d)
	})
}

func TestEvaluateSubscriptionMatrix(t *testing.T) {
	now := time.Now()
	basicItem := models.ContentItem{Tag: strPtr(models.TagBasic), Price: uintPtr(5)}
	ultraItem := models.ContentItem{Tag: strPtr(models.TagUltra), Price: uintPtr(5)}

	tests := []struct {
		name string
		user models.User
		item models.ContentItem
		want Decision
	}{
		{"basic monthly on basic content", subscriber(models.LevelBasic, models.TierMonthly, 7), basicItem, Decision{Granted: true}},
		{"ultra weekly on basic content", subscriber(models.LevelUltra, models.TierWeekly, 3), basicItem, Decision{Granted: true}},
		{"ultra yearly on basic content", subscriber(models.LevelUltra, models.TierYearly, 200), basicItem, Decision{Granted: true}},
		{"basic monthly on ultra content pays", subscriber(models.LevelBasic, models.TierMonthly, 7), ultraItem, Decision{Granted: false, Cost: 5, RequiresConfirmation: true}},
		// WEEKLY-ULTRA keeps BASIC entitlements but is excluded from ULTRA content.
		{"ultra weekly on ultra content pays", subscriber(models.LevelUltra, models.TierWeekly, 3), ultraItem, Decision{Granted: false, Cost: 5, RequiresConfirmation: true}},
		{"ultra monthly on ultra content", subscriber(models.LevelUltra, models.TierMonthly, 7), ultraItem, Decision{Granted: true}},
		{"ultra yearly on ultra content", subscriber(models.LevelUltra, models.TierYearly, 200), ultraItem, Decision{Granted: true}},
		{"ultra lifetime on ultra content", subscriber(models.LevelUltra, models.TierLifetime, 0), ultraItem, Decision{Granted: true}},
		{"expired subscription pays", subscriber(models.LevelUltra, models.TierYearly, -1), ultraItem, Decision{Granted: false, Cost: 5, RequiresConfirmation: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.user, tt.item, models.ModeStandard, now, testPricing)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	now := time.Now()
	user := subscriber(models.LevelUltra, models.TierWeekly, 3)
	item := models.ContentItem{Tag: strPtr(models.TagUltra), Price: uintPtr(5)}

	first := Evaluate(user, item, models.ModeStandard, now, testPricing)
	second := Evaluate(user, item, models.ModeStandard, now, testPricing)
	assert.Equal(t, first, second)
}

func TestPriceResolutionChains(t *testing.T) {
	t.Run("standard prefers scoped price", func(t *testing.T) {
		item := models.ContentItem{PriceStandard: uintPtr(3), Price: uintPtr(8)}
		assert.Equal(t, uint(3), ResolvePrice(item, models.ModeStandard, testPricing))
	})

	t.Run("standard falls back to legacy then default", func(t *testing.T) {
		item := models.ContentItem{Price: uintPtr(8)}
		assert.Equal(t, uint(8), ResolvePrice(item, models.ModeStandard, testPricing))
		assert.Equal(t, uint(5), ResolvePrice(models.ContentItem{}, models.ModeStandard, testPricing))
	})

	t.Run("competitive never reads the legacy price", func(t *testing.T) {
		item := models.ContentItem{Price: uintPtr(3)}
		assert.Equal(t, uint(10), ResolvePrice(item, models.ModeCompetitive, testPricing))
	})

	t.Run("competitive prefers scoped price", func(t *testing.T) {
		item := models.ContentItem{PriceCompetitive: uintPtr(7), Price: uintPtr(3)}
		assert.Equal(t, uint(7), ResolvePrice(item, models.ModeCompetitive, testPricing))
	})
}

func TestTagResolutionChains(t *testing.T) {
	item := models.ContentItem{Tag: strPtr(models.TagFree)}
	assert.Equal(t, models.TagFree, ResolveTag(item, models.ModeStandard))
	// COMPETITIVE ignores the legacy tag entirely.
	assert.Equal(t, models.TagBasic, ResolveTag(item, models.ModeCompetitive))

	scoped := models.ContentItem{TagStandard: strPtr(models.TagUltra), Tag: strPtr(models.TagFree)}
	assert.Equal(t, models.TagUltra, ResolveTag(scoped, models.ModeStandard))
}

func TestCanSelectMode(t *testing.T) {
	now := time.Now()

	require.NoError(t, CanSelectMode(models.User{Role: "LEARNER"}, models.ModeStandard, now))
	require.NoError(t, CanSelectMode(models.User{Role: "ADMIN"}, models.ModeCompetitive, now))
	require.NoError(t, CanSelectMode(subscriber(models.LevelUltra, models.TierYearly, 100), models.ModeCompetitive, now))
	require.NoError(t, CanSelectMode(subscriber(models.LevelUltra, models.TierLifetime, 0), models.ModeCompetitive, now))

	err := CanSelectMode(subscriber(models.LevelUltra, models.TierWeekly, 3), models.ModeCompetitive, now)
	require.ErrorIs(t, err, ErrAccessDenied)

	err = CanSelectMode(subscriber(models.LevelUltra, models.TierMonthly, 7), models.ModeCompetitive, now)
	require.ErrorIs(t, err, ErrAccessDenied)

	err = CanSelectMode(subscriber(models.LevelBasic, models.TierYearly, 100), models.ModeCompetitive, now)
	require.ErrorIs(t, err, ErrAccessDenied)

	err = CanSelectMode(models.User{Role: "LEARNER"}, models.ModeCompetitive, now)
	require.ErrorIs(t, err, ErrAccessDenied)
}
