package contentController

import (
	"edugate/config"
	"edugate/content"
	"edugate/database"
	"edugate/entitlement"
	"edugate/ledger"
	"edugate/middleware"
	"edugate/models"
	"edugate/utils"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// unlockTokenTTL bounds how long a pending confirmation stays valid.
const unlockTokenTTL = 5 * time.Minute

var source *content.Source

// InitSource wires the content source against the remote API and the local
// sqlite cache. Called once from main after the databases are up.
func InitSource() {
	cache := content.NewGormCache(database.Cache.Db)
	source = content.NewSource(
		config.AppConfig.ContentApiURL,
		config.AppConfig.ContentFetchTimeout,
		cache,
	)
}

// Source exposes the shared content source to other controllers.
func Source() *content.Source {
	return source
}

// Pricing builds the configured fallback prices for entitlement checks.
func Pricing() entitlement.Pricing {
	return entitlement.Pricing{
		DefaultStandard:    uint(config.AppConfig.DefaultContentPrice),
		DefaultCompetitive: uint(config.AppConfig.DefaultCompetitivePrice),
	}
}

// HasConfirmedUnlock reports whether the user already paid for this content
// key today. A confirmed debit covers the rest of the day's viewing, so one
// unlock is never charged twice.
func HasConfirmedUnlock(userID uint, contentKey string) bool {
	since := time.Now().Add(-24 * time.Hour)
	var count int64
	database.Database.Db.Model(&models.CreditTransaction{}).
		Where("user_id = ? AND reference_key = ? AND status = ? AND transaction_date > ? AND is_deleted = false",
			userID, contentKey, models.TransactionStatusCompleted, since).
		Count(&count)
	return count > 0
}

// OpenContent runs the entitlement check for a content item. Free or
// subscribed users get the item straight away; auto-deduct users are debited
// in the same request; everyone else receives a single-use unlock token to
// confirm the charge.
func OpenContent(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedOpen").(*struct {
		Board   string `json:"board"`
		Class   int    `json:"class"`
		Stream  string `json:"stream"`
		Subject string `json:"subject"`
		Chapter int    `json:"chapter"`
		Mode    string `json:"mode"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	mode := reqData.Mode
	if mode == "" {
		mode = user.ActiveMode
	}
	if mode == models.ModeCompetitive {
		if err := entitlement.CanSelectMode(user, mode, time.Now()); err != nil {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
		}
	}

	key := content.Key{
		Board:   reqData.Board,
		Class:   reqData.Class,
		Stream:  reqData.Stream,
		Subject: reqData.Subject,
		Chapter: reqData.Chapter,
	}

	item, err := source.Fetch(c.Context(), key)
	if err != nil {
		if errors.Is(err, content.ErrContentUnavailable) {
			// Nothing published for this chapter yet; not an error state.
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Content coming soon!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
	}

	decision := entitlement.Evaluate(user, *item, mode, time.Now(), Pricing())

	if decision.Granted || HasConfirmedUnlock(user.ID, item.Key) {
		utils.AppendUsageLog(database.Database.Db, user.ID, "CONTENT_VIEW", item.Key, 0)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Content unlocked!", fiber.Map{
			"content":  item,
			"decision": decision,
		})
	}

	// Auto-deduct users confirmed once and for all; debit and unlock as a
	// single action.
	if !decision.RequiresConfirmation {
		db := database.Database.Db
		tx := db.Begin()
		if _, err := ledger.RecordDebit(tx, &user, decision.Cost, models.TransactionTypeUnlock, item.Key,
			"Auto-deduct unlock: "+item.Title, false); err != nil {
			tx.Rollback()
			if errors.Is(err, ledger.ErrInsufficientBalance) {
				return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "Insufficient credit balance!", fiber.Map{
					"required": decision.Cost,
					"balance":  user.Credits,
				})
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process debit!", nil)
		}
		tx.Commit()

		utils.AppendUsageLog(db, user.ID, "CONTENT_VIEW", item.Key, 0)
		utils.SyncUserSnapshot(user)

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Content unlocked!", fiber.Map{
			"content": item,
			"charged": decision.Cost,
			"balance": user.Credits,
		})
	}

	// Payment needs explicit confirmation: issue a single-use token and keep
	// all state untouched until it is consumed.
	token := models.UnlockToken{
		Token:      uuid.NewString(),
		UserID:     user.ID,
		ContentKey: item.Key,
		Mode:       mode,
		Cost:       decision.Cost,
		Purpose:    string(models.TransactionTypeUnlock),
		ExpiresAt:  time.Now().Add(unlockTokenTTL),
	}
	if err := database.Database.Db.Create(&token).Error; err != nil {
		log.Printf("Error creating unlock token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Confirmation required to unlock!", fiber.Map{
		"decision":    decision,
		"unlockToken": token.Token,
		"cost":        decision.Cost,
		"balance":     user.Credits,
		"expiresAt":   token.ExpiresAt,
	})
}

// ConfirmUnlock consumes an unlock token: the debit and the unlock happen in
// one transaction or not at all, and a token is never honored twice.
func ConfirmUnlock(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedConfirm").(*struct {
		Token              string `json:"token"`
		RememberAutoDeduct bool   `json:"rememberAutoDeduct"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var token models.UnlockToken
	if err := db.Where("token = ? AND user_id = ? AND consumed = false", reqData.Token, userId).First(&token).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unlock token not found or already used!", nil)
	}
	if time.Now().After(token.ExpiresAt) {
		return middleware.JsonResponse(c, fiber.StatusGone, false, "Unlock token expired. Open the content again.", nil)
	}

	tx := db.Begin()

	token.Consumed = true
	if err := tx.Save(&token).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if _, err := ledger.RecordDebit(tx, &user, token.Cost, models.TransactionType(token.Purpose), token.ContentKey,
		"Confirmed unlock", reqData.RememberAutoDeduct); err != nil {
		tx.Rollback()
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "Insufficient credit balance!", fiber.Map{
				"required": token.Cost,
				"balance":  user.Credits,
			})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process debit!", nil)
	}

	tx.Commit()

	utils.AppendUsageLog(db, user.ID, "CONTENT_VIEW", token.ContentKey, 0)
	utils.SyncUserSnapshot(user)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content unlocked!", fiber.Map{
		"contentKey": token.ContentKey,
		"charged":    token.Cost,
		"balance":    user.Credits,
	})
}

// SwitchMode changes the active content mode. Competitive mode is gated to
// active ULTRA subscribers on YEARLY or LIFETIME tiers; a rejected switch
// changes nothing.
func SwitchMode(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedMode").(*struct {
		Mode string `json:"mode"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := entitlement.CanSelectMode(user, reqData.Mode, time.Now()); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
	}

	user.ActiveMode = reqData.Mode
	if err := database.Database.Db.Save(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to switch mode!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Mode switched!", fiber.Map{
		"activeMode": user.ActiveMode,
	})
}

// UpsertContent creates or updates a content item (Admin only). Writes go to
// the main database and refresh the local cache copy.
func UpsertContent(c *fiber.Ctx) error {
	var item models.ContentItem
	if err := c.BodyParser(&item); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if item.Key == "" || item.Kind == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content key and kind are required!", nil)
	}

	db := database.Database.Db

	var existing models.ContentItem
	if err := db.Where("key = ?", item.Key).First(&existing).Error; err == nil {
		item.ID = existing.ID
		if err := db.Save(&item).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update content!", nil)
		}
	} else {
		if err := db.Create(&item).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
		}
	}

	if err := content.NewGormCache(database.Cache.Db).Put(item); err != nil {
		log.Printf("Error refreshing content cache for %s: %v", item.Key, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content saved!", fiber.Map{
		"key": item.Key,
	})
}
