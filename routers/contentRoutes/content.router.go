package contentRoutes

import (
	contentController "edugate/controllers/content"
	"edugate/middleware"
	contentValidator "edugate/validators/content"

	"github.com/gofiber/fiber/v2"
)

func SetupContentRoutes(app *fiber.App) {
	contentGroup := app.Group("/content")

	contentGroup.Post("/open", contentValidator.Open(), middleware.JWTMiddleware, contentController.OpenContent)
	contentGroup.Post("/confirm", contentValidator.Confirm(), middleware.JWTMiddleware, contentController.ConfirmUnlock)
	contentGroup.Post("/mode", contentValidator.Mode(), middleware.JWTMiddleware, contentController.SwitchMode)

	// Admin routes
	adminGroup := contentGroup.Group("/admin")
	adminGroup.Post("/upsert", middleware.JWTMiddleware, middleware.AdminOnly, contentController.UpsertContent)
}
