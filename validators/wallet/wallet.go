package walletValidator

import (
	"edugate/middleware"

	"github.com/gofiber/fiber/v2"
)

// AddCredits validates an admin credit grant request
func AddCredits() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint   `json:"userId"`
			Amount uint   `json:"amount"`
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.Amount == 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddCredits", reqData)
		return c.Next()
	}
}

// DeductCredits validates an admin credit deduction request
func DeductCredits() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint   `json:"userId"`
			Amount uint   `json:"amount"`
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.Amount == 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}
		if reqData.Reason == "" {
			errors["reason"] = "Reason is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDeductCredits", reqData)
		return c.Next()
	}
}
