package walletController

import (
	"edugate/database"
	"edugate/ledger"
	"edugate/middleware"
	"edugate/models"
	"edugate/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GetCreditBalance returns the user's current credit balance
func GetCreditBalance(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Credit balance fetched!", fiber.Map{
		"balance":    user.Credits,
		"autoDeduct": user.AutoDeduct,
	})
}

// GetCreditHistory returns the user's credit transaction history
func GetCreditHistory(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	// Parse query params
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	txnType := c.Query("type") // CONTENT_UNLOCK, ANALYSIS_UNLOCK, etc.

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	offset := (page - 1) * limit
	db := database.Database.Db

	query := db.Model(&models.CreditTransaction{}).Where("user_id = ? AND is_deleted = false", userId)

	if txnType != "" {
		query = query.Where("transaction_type = ?", txnType)
	}

	var total int64
	query.Count(&total)

	var transactions []models.CreditTransaction
	if err := query.
		Order("transaction_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Credit history fetched!", fiber.Map{
		"transactions":   transactions,
		"currentBalance": user.Credits,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AddCredits grants credits to a user's balance (Admin only)
func AddCredits(c *fiber.Ctx) error {
	adminId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAddCredits").(*struct {
		UserID uint   `json:"userId"`
		Amount uint   `json:"amount"`
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var targetUser models.User
	if err := db.Where("id = ? AND is_deleted = false", reqData.UserID).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	balanceBefore := targetUser.Credits
	balanceAfter := balanceBefore + reqData.Amount

	transaction := models.CreditTransaction{
		UserID:          targetUser.ID,
		TransactionType: models.TransactionTypeAdminCredit,
		Amount:          reqData.Amount,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		Status:          models.TransactionStatusCompleted,
		Description:     "Admin credit grant",
		AdminID:         adminId,
		Reason:          reqData.Reason,
		TransactionDate: time.Now(),
	}

	tx := db.Begin()
	if err := tx.Create(&transaction).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create transaction!", nil)
	}

	targetUser.Credits = balanceAfter
	if err := tx.Save(&targetUser).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update balance!", nil)
	}
	tx.Commit()

	utils.SyncUserSnapshot(targetUser)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Credits added!", fiber.Map{
		"transactionId": transaction.ID,
		"amount":        reqData.Amount,
		"balanceBefore": balanceBefore,
		"balanceAfter":  balanceAfter,
	})
}

// DeductCredits removes credits from a user's balance (Admin only)
func DeductCredits(c *fiber.Ctx) error {
	adminId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedDeductCredits").(*struct {
		UserID uint   `json:"userId"`
		Amount uint   `json:"amount"`
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var targetUser models.User
	if err := db.Where("id = ? AND is_deleted = false", reqData.UserID).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	tx := db.Begin()
	transaction, err := ledger.RecordDebit(tx, &targetUser, reqData.Amount, models.TransactionTypeAdminDebit,
		"", "Admin debit: "+reqData.Reason, false)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "User has insufficient balance!", fiber.Map{
				"balance": targetUser.Credits,
			})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process debit!", nil)
	}

	transaction.AdminID = adminId
	transaction.Reason = reqData.Reason
	if err := tx.Save(transaction).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update transaction!", nil)
	}
	tx.Commit()

	utils.SyncUserSnapshot(targetUser)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Credits deducted!", fiber.Map{
		"transactionId": transaction.ID,
		"amount":        reqData.Amount,
		"balanceAfter":  targetUser.Credits,
	})
}
