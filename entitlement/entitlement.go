// Package entitlement decides whether a user may open a content item and at
// what credit cost. Evaluate is pure: no clock reads, no store access, same
// inputs always produce the same decision.
package entitlement

import (
	"edugate/models"
	"errors"
	"fmt"
	"time"
)

// ErrAccessDenied is returned when a mode or tier requirement is not met.
// It is user-visible and not retryable without an upgrade.
var ErrAccessDenied = errors.New("access denied")

// Pricing carries the configured fallback prices, resolved last in the
// per-mode lookup chain.
type Pricing struct {
	DefaultStandard    uint
	DefaultCompetitive uint
}

// Decision is derived per request and never stored.
type Decision struct {
	Granted              bool `json:"granted"`
	Cost                 uint `json:"cost"`
	RequiresConfirmation bool `json:"requiresConfirmation"`
}

// ResolveTag returns the effective access tag for the item in the given mode.
// STANDARD falls back to the legacy unscoped tag; COMPETITIVE never does.
// With nothing set the item is treated as BASIC paid content.
func ResolveTag(item models.ContentItem, mode string) string {
	if mode == models.ModeCompetitive {
		if item.TagCompetitive != nil {
			return *item.TagCompetitive
		}
		return models.TagBasic
	}
	if item.TagStandard != nil {
		return *item.TagStandard
	}
	if item.Tag != nil {
		return *item.Tag
	}
	return models.TagBasic
}

// ResolvePrice returns the effective credit price for the item in the given
// mode. STANDARD: explicit standard price, then the legacy unscoped price,
// then the configured default. COMPETITIVE: explicit competitive price, then
// the configured competitive default, never the legacy field.
func ResolvePrice(item models.ContentItem, mode string, pricing Pricing) uint {
	if mode == models.ModeCompetitive {
		if item.PriceCompetitive != nil {
			return *item.PriceCompetitive
		}
		return pricing.DefaultCompetitive
	}
	if item.PriceStandard != nil {
		return *item.PriceStandard
	}
	if item.Price != nil {
		return *item.Price
	}
	return pricing.DefaultStandard
}

// Evaluate applies the access rules in priority order:
// admin, free-or-price-zero, subscription match, then paid.
func Evaluate(user models.User, item models.ContentItem, mode string, now time.Time, pricing Pricing) Decision {
	if user.Role == "ADMIN" {
		return Decision{Granted: true}
	}

	tag := ResolveTag(item, mode)
	price := ResolvePrice(item, mode, pricing)

	// Price zero is a legacy marker for free content and wins even when an
	// access tag is present.
	if tag == models.TagFree || price == 0 {
		return Decision{Granted: true}
	}

	if user.HasActiveSubscription(now) {
		switch tag {
		case models.TagBasic:
			if user.SubscriptionLevel == models.LevelBasic || user.SubscriptionLevel == models.LevelUltra {
				return Decision{Granted: true}
			}
		case models.TagUltra:
			// WEEKLY-ULTRA subscribers keep BASIC entitlements but are
			// excluded from ULTRA-tagged content.
			if user.SubscriptionLevel == models.LevelUltra && user.SubscriptionTier != models.TierWeekly {
				return Decision{Granted: true}
			}
		}
	}

	return Decision{
		Granted:              false,
		Cost:                 price,
		RequiresConfirmation: !user.AutoDeduct,
	}
}

// CanSelectMode gates mode switching. COMPETITIVE is selectable only with an
// active ULTRA subscription on a YEARLY or LIFETIME tier; a rejected switch
// changes no state.
func CanSelectMode(user models.User, mode string, now time.Time) error {
	if mode != models.ModeCompetitive {
		return nil
	}
	if user.Role == "ADMIN" {
		return nil
	}
	if !user.HasActiveSubscription(now) {
		return fmt.Errorf("%w: competitive mode requires an active ULTRA subscription", ErrAccessDenied)
	}
	if user.SubscriptionLevel != models.LevelUltra {
		return fmt.Errorf("%w: competitive mode requires the ULTRA plan", ErrAccessDenied)
	}
	if user.SubscriptionTier != models.TierYearly && user.SubscriptionTier != models.TierLifetime {
		return fmt.Errorf("%w: competitive mode requires a YEARLY or LIFETIME ULTRA plan", ErrAccessDenied)
	}
	return nil
}

// AnalysisItem builds the synthetic item used for the post-quiz analysis
// unlock, which reuses Evaluate with its own, typically smaller, price.
func AnalysisItem(price uint) models.ContentItem {
	tag := models.TagBasic
	return models.ContentItem{
		Key:           "analysis",
		Kind:          models.KindDocument,
		Title:         "Detailed answer analysis",
		Tag:           &tag,
		PriceStandard: &price,
	}
}
