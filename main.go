package main

import (
	"log" // Import standard log package

	"github.com/gofiber/fiber/v2"                   // Import Fiber framework
	"github.com/gofiber/fiber/v2/middleware/logger" // Fiber logger middleware

	"paediprime/backend/config"     // Local config package
	"paediprime/backend/database"   // Local database package
	"paediprime/backend/handlers"   // Local handlers package
	"paediprime/backend/middleware" // Local middleware package
	"paediprime/backend/services"   // Local services package
	"paediprime/backend/utils"      // Local utils package
)

// main is the entry point of the application.
func main() {
	// Load configuration first; a missing signing key or media-store
	// credential is fatal here, before anything serves.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger()

	// Initialize the database connection pool
	database.InitDB()        // This also loads config, but we load it above for the services
	defer database.CloseDB() // Ensure the pool is drained when main exits

	// Initialize the Redis client backing the rate limiter
	rdb := database.ConnectRedis(cfg)

	// Create a new Fiber app instance. The body limit sits above the
	// 10 MiB file cap so the handler, not the framework, rejects large
	// pictures with a useful message.
	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024,
	})

	// Add logger middleware for http requests
	app.Use(logger.New())

	handlers.SetupHealthRoutes(app, rdb)

	// Setup API group
	api := app.Group("/api")

	// --- Setup application services ---
	tokenService := services.NewTokenService(cfg)
	mediaService := services.NewMediaService(services.NewSupabaseStore(cfg))
	registrationService := services.NewRegistrationService(mediaService, tokenService)

	// --- Setup routes ---
	limiter := middleware.CreateUserLimiter(cfg, rdb)
	handlers.SetupUserRoutes(api, registrationService, tokenService, limiter)

	// Use port from configuration
	port := cfg.ServerPort
	log.Printf("Starting Paediprime backend server on port %s", port)
	utils.InfoLog.Printf("server starting on port %s", port)

	// Start the Fiber server
	log.Fatal(app.Listen(":" + port))
}
