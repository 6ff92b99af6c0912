package utils

import (
	"edugate/config"
	"edugate/models"
	"log"

	"github.com/go-resty/resty/v2"
)

// SyncUserSnapshot pushes the latest user snapshot to the remote sync service
// in the background. Best effort only: it never blocks the caller and
// failures are logged, not surfaced.
func SyncUserSnapshot(user models.User) {
	syncURL := config.AppConfig.UserSyncURL
	if syncURL == "" {
		return
	}

	go func(u models.User) {
		client := resty.New()
		resp, err := client.R().
			SetBody(map[string]interface{}{
				"id":                 u.ID,
				"name":               u.Name,
				"email":              u.Email,
				"credits":            u.Credits,
				"isPremium":          u.IsPremium,
				"subscriptionTier":   u.SubscriptionTier,
				"subscriptionLevel":  u.SubscriptionLevel,
				"subscriptionExpiry": u.SubscriptionExpiry,
				"activeMode":         u.ActiveMode,
			}).
			Post(syncURL)
		if err != nil {
			log.Printf("[USER-SYNC] Failed to sync user %d: %v", u.ID, err)
			return
		}
		if !resp.IsSuccess() {
			log.Printf("[USER-SYNC] Sync for user %d returned status %d", u.ID, resp.StatusCode())
		}
	}(user)
}
