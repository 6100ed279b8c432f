package handlers

import (
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

// SetupHealthRoutes registers the liveness and dependency health routes.
func SetupHealthRoutes(app *fiber.App, rdb *redis.Client) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Paediprime API is up and running!")
	})

	app.Get("/health/redis", func(c *fiber.Ctx) error {
		pong, err := rdb.Ping(c.Context()).Result()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"redis": "down", "error": err.Error(),
			})
		}
		if pong != "PONG" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"redis": "unreachable", "response": pong,
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"redis": "up"})
	})

	log.Println("Health routes (/, /health/redis) setup complete.")
}
