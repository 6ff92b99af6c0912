package quizRoutes

import (
	quizController "edugate/controllers/quiz"
	"edugate/middleware"
	quizValidator "edugate/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoutes(app *fiber.App) {
	quizGroup := app.Group("/quiz")

	quizGroup.Post("/start", quizValidator.Start(), middleware.JWTMiddleware, quizController.StartQuiz)
	quizGroup.Post("/resume", quizValidator.ChapterKey(), middleware.JWTMiddleware, quizController.ResumeQuiz)
	quizGroup.Post("/restart", quizValidator.ChapterKey(), middleware.JWTMiddleware, quizController.RestartQuiz)
	quizGroup.Post("/answer", quizValidator.Answer(), middleware.JWTMiddleware, quizController.AnswerQuestion)
	quizGroup.Get("/window", middleware.JWTMiddleware, quizController.GetWindow)
	quizGroup.Post("/reshuffle", quizValidator.Reshuffle(), middleware.JWTMiddleware, quizController.ReshuffleQuiz)
	quizGroup.Post("/submit", quizValidator.ChapterKey(), middleware.JWTMiddleware, quizController.SubmitQuiz)
	quizGroup.Post("/submit/cancel", quizValidator.ChapterKey(), middleware.JWTMiddleware, quizController.CancelSubmit)
	quizGroup.Post("/submit/confirm", quizValidator.ChapterKey(), middleware.JWTMiddleware, quizController.ConfirmSubmit)
	quizGroup.Post("/analysis/unlock", quizValidator.Analysis(), middleware.JWTMiddleware, quizController.UnlockAnalysis)
	quizGroup.Get("/results", middleware.JWTMiddleware, quizController.GetResultHistory)
}
