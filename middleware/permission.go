package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/models"
)

// RequireRole lets the request through only when the token's role is one
// of roles. It must run after Protected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have the required role to perform this action",
		})
	}
}
