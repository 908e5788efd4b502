package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/security"
)

// Protected verifies the access token on the Authorization header and stores
// the decoded claims in the request context. The old API accepted the raw
// token in the header; a "Bearer " prefix is tolerated as well.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseToken(secret, tokenString)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_name", claims.Name)

		return c.Next()
	}
}
