package userControllers

import (
	"edugate/database"
	"edugate/middleware"
	"edugate/models"
	"edugate/utils"

	"github.com/gofiber/fiber/v2"
)

// GetProfile returns the user's profile, subscription, and study stats
func GetProfile(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db

	var strengths []models.SubjectStrength
	db.Where("user_id = ?", userId).Find(&strengths)

	var progress []models.SubjectProgress
	db.Where("user_id = ?", userId).Find(&progress)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched!", fiber.Map{
		"user": fiber.Map{
			"id":                 user.ID,
			"name":               user.Name,
			"email":              user.Email,
			"role":               user.Role,
			"credits":            user.Credits,
			"isPremium":          user.IsPremium,
			"subscriptionTier":   user.SubscriptionTier,
			"subscriptionLevel":  user.SubscriptionLevel,
			"subscriptionExpiry": user.SubscriptionExpiry,
			"autoDeduct":         user.AutoDeduct,
			"activeMode":         user.ActiveMode,
		},
		"strengths": strengths,
		"progress":  progress,
	})
}

// UpdatePreferences updates profile preferences like auto-deduct
func UpdatePreferences(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData := new(struct {
		AutoDeduct *bool   `json:"autoDeduct"`
		Name       *string `json:"name"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.AutoDeduct != nil {
		user.AutoDeduct = *reqData.AutoDeduct
	}
	if reqData.Name != nil && *reqData.Name != "" {
		user.Name = *reqData.Name
	}

	if err := database.Database.Db.Save(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	utils.SyncUserSnapshot(user)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated!", fiber.Map{
		"autoDeduct": user.AutoDeduct,
		"name":       user.Name,
	})
}

// GetUsageHistory returns the capped, append-only usage log, newest first
func GetUsageHistory(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var logs []models.UsageLog
	if err := database.Database.Db.Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch usage history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Usage history fetched!", fiber.Map{
		"usage": logs,
	})
}
