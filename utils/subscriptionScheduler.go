package utils

import (
	"edugate/database"
	"edugate/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeSubscriptionScheduler sets up the subscription expiry scheduler
func InitializeSubscriptionScheduler() {
	log.Println("[SUBSCRIPTION-SCHEDULER] Initializing subscription scheduler...")

	c := cron.New()

	// Run daily at 9 AM to check expiring subscriptions
	c.AddFunc("0 9 * * *", func() {
		log.Println("[SUBSCRIPTION-SCHEDULER] Running daily subscription check...")
		ProcessExpiringSubscriptions()
		ExpireSubscriptions()
	})

	c.Start()
	log.Println("[SUBSCRIPTION-SCHEDULER] Subscription scheduler started - runs daily at 9 AM")
}

// ProcessExpiringSubscriptions sends reminder emails for subscriptions expiring in 2 days
func ProcessExpiringSubscriptions() {
	db := database.Database.Db
	now := time.Now()
	twoDaysFromNow := now.AddDate(0, 0, 2)

	var expiringUsers []models.User
	if err := db.
		Where("is_premium = true AND reminder_sent = false AND subscription_tier <> ?", models.TierLifetime).
		Where("subscription_expiry IS NOT NULL AND subscription_expiry BETWEEN ? AND ?", now, twoDaysFromNow).
		Find(&expiringUsers).Error; err != nil {
		log.Printf("[SUBSCRIPTION-SCHEDULER] Error fetching expiring subscriptions: %v", err)
		return
	}

	log.Printf("[SUBSCRIPTION-SCHEDULER] Found %d subscriptions expiring soon", len(expiringUsers))

	for _, user := range expiringUsers {
		SendSubscriptionExpiryReminder(user.Email, user.Name, user.SubscriptionLevel, user.SubscriptionExpiry)

		// Mark reminder as sent
		db.Model(&user).Update("reminder_sent", true)
		log.Printf("[SUBSCRIPTION-SCHEDULER] Sent expiry reminder to %s", user.Email)
	}
}

// ExpireSubscriptions clears the premium flag for lapsed subscriptions
func ExpireSubscriptions() {
	db := database.Database.Db
	now := time.Now()

	result := db.Model(&models.User{}).
		Where("is_premium = true AND subscription_tier <> ?", models.TierLifetime).
		Where("subscription_expiry IS NOT NULL AND subscription_expiry < ?", now).
		Updates(map[string]interface{}{"is_premium": false, "reminder_sent": false})

	if result.Error != nil {
		log.Printf("[SUBSCRIPTION-SCHEDULER] Error expiring subscriptions: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[SUBSCRIPTION-SCHEDULER] Expired %d subscriptions", result.RowsAffected)
	}
}
