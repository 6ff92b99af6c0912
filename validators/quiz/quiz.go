package quizValidator

import (
	"edugate/middleware"
	"edugate/models"

	"github.com/gofiber/fiber/v2"
)

// Start validates a quiz-start request
func Start() fiber.Handler {
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

		c.Locals("validatedStart", reqData)
		return c.Next()
	}
}

// ChapterKey validates requests that only carry the chapter key
func ChapterKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ChapterKey string `json:"chapterKey"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ChapterKey == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"chapterKey": "Chapter key is required!",
			})
		}

		c.Locals("chapterKey", reqData.ChapterKey)
		return c.Next()
	}
}

// Answer validates an answer submission
func Answer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ChapterKey string `json:"chapterKey"`
			Position   int    `json:"position"`
			Option     int    `json:"option"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ChapterKey == "" {
			errors["chapterKey"] = "Chapter key is required!"
		}
		if reqData.Position < 0 {
			errors["position"] = "Position must not be negative!"
		}
		if reqData.Option < 0 {
			errors["option"] = "Option must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAnswer", reqData)
		return c.Next()
	}
}

// Reshuffle validates a re-shuffle request
func Reshuffle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ChapterKey string `json:"chapterKey"`
			Confirmed  bool   `json:"confirmed"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ChapterKey == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"chapterKey": "Chapter key is required!",
			})
		}

		c.Locals("validatedReshuffle", reqData)
		return c.Next()
	}
}

// Analysis validates an analysis-unlock request
func Analysis() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ChapterKey string `json:"chapterKey"`
			Confirmed  bool   `json:"confirmed"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ChapterKey == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"chapterKey": "Chapter key is required!",
			})
		}

		c.Locals("validatedAnalysis", reqData)
		return c.Next()
	}
}
