package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with a generated id, echoed in X-Request-Id
// so log lines and client reports can be correlated.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("request_id", id)
		c.Set("X-Request-Id", id)

		return c.Next()
	}
}
