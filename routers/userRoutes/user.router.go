package userRoutes

import (
	"edugate/controllers/userControllers"
	"edugate/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Get("/profile", middleware.JWTMiddleware, userControllers.GetProfile)
	userGroup.Put("/preferences", middleware.JWTMiddleware, userControllers.UpdatePreferences)
	userGroup.Get("/usage", middleware.JWTMiddleware, userControllers.GetUsageHistory)
}
