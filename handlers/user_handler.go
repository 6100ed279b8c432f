package handlers

import (
	"errors"
	"io"
	"log"
	"net/http" // For content-type sniffing

	"github.com/gofiber/fiber/v2"

	"paediprime/backend/middleware"
	"paediprime/backend/models"
	"paediprime/backend/services"
	"paediprime/backend/utils"
)

// maxPfpSize caps the profile picture at 10 MiB.
const maxPfpSize = 10 * 1024 * 1024

// allowedImageTypes are the accepted profile picture formats.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UserHandler handles HTTP requests for user registration and identity.
type UserHandler struct {
	registration *services.RegistrationService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(registration *services.RegistrationService) *UserHandler {
	return &UserHandler{registration: registration}
}

// CreateUser handles the POST /api/user/create request: multipart profile
// fields plus a "pfp" image file.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var form models.RegistrationForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing registration form: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}
	log.Printf("Received registration request for email: %s", form.Email)

	// A missing file is a validation issue, not a transport error: the
	// service reports it together with every other missing field.
	var picture []byte
	if fileHeader, err := c.FormFile("pfp"); err == nil && fileHeader != nil {
		if fileHeader.Size > maxPfpSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "File too large",
				"details": "Maximum file size is 10MB",
			})
		}

		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("Error opening uploaded file: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Could not read uploaded file",
			})
		}
		picture, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			log.Printf("Error reading uploaded file: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Could not read uploaded file",
			})
		}

		if !allowedImageTypes[http.DetectContentType(picture)] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Invalid file type",
				"details": "Only image files (JPEG, PNG, WebP) are allowed",
			})
		}
	}

	resp, err := h.registration.Register(c.Context(), &form, picture)
	if err != nil {
		return registrationError(c, form.Email, err)
	}

	log.Printf("Registration successful for user: %s (ID: %d)", resp.User.Email, resp.User.UserID)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// registrationError maps service failures to transport responses. Internal
// details are logged, never leaked.
func registrationError(c *fiber.Ctx, email string, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"issues": validationErr.Issues,
		})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already exists",
		})
	case errors.Is(err, services.ErrPhoneTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Phone already exists",
		})
	case errors.Is(err, services.ErrUploadFailed):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Profile picture upload failed",
		})
	default:
		log.Printf("[Unhandled Error] registration for %s: %v", email, err)
		if utils.ErrorLog != nil {
			utils.ErrorLog.Printf("registration for %s: %v", email, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}
}

// Me handles GET /api/user/me and returns the identity asserted by the
// verified access token.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user_id": c.Locals("userID"),
		"email":   c.Locals("email"),
	})
}

// SetupUserRoutes registers the registration and identity routes. The rate
// limiter guards only the registration endpoint.
func SetupUserRoutes(api fiber.Router, registration *services.RegistrationService, tokens *services.TokenService, limiter fiber.Handler) {
	handler := NewUserHandler(registration)
	userGroup := api.Group("/user")
	userGroup.Post("/create", limiter, handler.CreateUser)
	userGroup.Get("/me", middleware.Protected(tokens), handler.Me)
	log.Println("User routes (/user/create, /user/me) setup complete.")
}
