package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/viajes/internal/utils"
)

const claimsContextKey = "currentClaims"

// AuthMiddleware validates JWT tokens and loads the token claims into context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		claims, err := parseBearer(secret, authHeader)
		if err != nil {
			return err
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// OptionalAuth loads claims when a valid bearer token is sent and carries on
// anonymously otherwise.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if header := c.Get("Authorization"); header != "" {
			if claims, err := parseBearer(secret, header); err == nil {
				c.Locals(claimsContextKey, claims)
			}
		}
		return c.Next()
	}
}

func parseBearer(secret, header string) (*utils.Claims, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}

	claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// GetCurrentClaims extracts the authenticated token claims from context.
func GetCurrentClaims(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals(claimsContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}
