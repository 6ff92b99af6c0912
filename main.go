package main

import (
	"edugate/config"
	contentController "edugate/controllers/content"
	quizController "edugate/controllers/quiz"
	"edugate/database"
	authRoutes "edugate/routers/authRoutes"
	contentRoutes "edugate/routers/contentRoutes"
	quizRoutes "edugate/routers/quizRoutes"
	userRoutes "edugate/routers/userRoutes"
	walletRoutes "edugate/routers/walletRoutes"
	"edugate/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	database.ConnectCache(config.AppConfig.CacheDBPath)

	contentController.InitSource()
	quizController.InitEngine()
	utils.InitializeSubscriptionScheduler()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	walletRoutes.SetupWalletRoutes(app)
	contentRoutes.SetupContentRoutes(app)
	quizRoutes.SetupQuizRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
