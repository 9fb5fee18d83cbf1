// middleware/user_context.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware threads the caller identity from the X-User-ID
// header into request locals. Identity is an ordinary input here, not an
// auth decision: every mutating endpoint still takes the acting user id in
// its body, and the header only feeds log correlation.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		c.Locals("user_id", userID)

		if userID != "" {
			log.Printf("👤 [USER_CTX] UserID=%s | %s %s", userID, c.Method(), c.Path())
		}

		return c.Next()
	}
}
