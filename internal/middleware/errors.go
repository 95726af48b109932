package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error as {"success": false, "error": msg}.
// Unexpected errors keep their raw message and map to 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Method(), c.OriginalURL(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
