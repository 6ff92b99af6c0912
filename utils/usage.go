package utils

import (
	"edugate/config"
	"edugate/models"
	"log"

	"gorm.io/gorm"
)

// AppendUsageLog appends a usage entry and trims the user's history down to
// the configured cap, dropping the oldest rows.
func AppendUsageLog(db *gorm.DB, userID uint, activity, referenceKey string, durationSeconds int) {
	entry := models.UsageLog{
		UserID:          userID,
		Activity:        activity,
		ReferenceKey:    referenceKey,
		DurationSeconds: durationSeconds,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[USAGE] Failed to append usage log for user %d: %v", userID, err)
		return
	}

	cap := config.AppConfig.UsageHistoryCap
	if cap <= 0 {
		return
	}

	var stale []models.UsageLog
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(cap).
		Find(&stale).Error; err != nil {
		log.Printf("[USAGE] Failed to find stale usage logs for user %d: %v", userID, err)
		return
	}
	if len(stale) == 0 {
		return
	}

	ids := make([]uint, len(stale))
	for i, row := range stale {
		ids[i] = row.ID
	}
	if err := db.Unscoped().Delete(&models.UsageLog{}, ids).Error; err != nil {
		log.Printf("[USAGE] Failed to trim usage logs for user %d: %v", userID, err)
	}
}
