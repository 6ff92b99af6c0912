package walletRoutes

import (
	walletController "edugate/controllers/wallet"
	"edugate/middleware"
	walletValidator "edugate/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App) {
	walletGroup := app.Group("/wallet")

	// User routes
	walletGroup.Get("/balance", middleware.JWTMiddleware, walletController.GetCreditBalance)
	walletGroup.Get("/history", middleware.JWTMiddleware, walletController.GetCreditHistory)

	// Admin routes
	adminGroup := walletGroup.Group("/admin")
	adminGroup.Post("/add-credits", walletValidator.AddCredits(), middleware.JWTMiddleware, middleware.AdminOnly, walletController.AddCredits)
	adminGroup.Post("/deduct-credits", walletValidator.DeductCredits(), middleware.JWTMiddleware, middleware.AdminOnly, walletController.DeductCredits)
}
