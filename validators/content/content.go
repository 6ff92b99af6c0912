package contentValidator

import (
	"edugate/middleware"
	"edugate/models"

	"github.com/gofiber/fiber/v2"
)

// Open validates a content-open request
func Open() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Board   string `json:"board"`
			Class   int    `json:"class"`
			Stream  string `json:"stream"`
			Subject string `json:"subject"`
			Chapter int    `json:"chapter"`
			Mode    string `json:"mode"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Board == "" {
			errors["board"] = "Board is required!"
		}
		if reqData.Class <= 0 {
			errors["class"] = "Class must be greater than 0!"
		}
		if reqData.Subject == "" {
			errors["subject"] = "Subject is required!"
		}
		if reqData.Chapter <= 0 {
			errors["chapter"] = "Chapter must be greater than 0!"
		}
		if reqData.Mode != "" && reqData.Mode != models.ModeStandard && reqData.Mode != models.ModeCompetitive {
			errors["mode"] = "Mode must be STANDARD or COMPETITIVE!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedOpen", reqData)
		return c.Next()
	}
}

// Confirm validates an unlock confirmation request
func Confirm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Token              string `json:"token"`
			RememberAutoDeduct bool   `json:"rememberAutoDeduct"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Token == "" {
			errors["token"] = "Unlock token is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedConfirm", reqData)
		return c.Next()
	}
}

// Mode validates a mode-switch request
func Mode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Mode string `json:"mode"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Mode != models.ModeStandard && reqData.Mode != models.ModeCompetitive {
			errors["mode"] = "Mode must be STANDARD or COMPETITIVE!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMode", reqData)
		return c.Next()
	}
}
