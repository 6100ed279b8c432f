package middleware

import (
	"log"
	"strings" // For string manipulation (Bearer token)

	"github.com/gofiber/fiber/v2"

	"paediprime/backend/services"
)

// Protected is a middleware function to protect routes that require
// authentication. It verifies the JWT token from the Authorization header
// and stores the asserted identity in the request locals.
func Protected(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Println("Auth Middleware: Missing Authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized: Missing authorization token",
			})
		}

		// Check if the header format is "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			log.Println("Auth Middleware: Invalid Authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized: Invalid token format",
			})
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			log.Printf("Auth Middleware: Error validating token: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized: Invalid or expired token",
			})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}
