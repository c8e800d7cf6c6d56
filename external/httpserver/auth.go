package httpserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/warlocks1507/checkin/internal/access"
)

const (
	headerAccessKey = "x-access-key"
	headerAppKey    = "x-app-key"
	localsRole      = "role"
)

func presentedKey(c *fiber.Ctx) string {
	if k := c.Get(headerAccessKey); k != "" {
		return k
	}
	return c.Get(headerAppKey)
}

// requirePermission rejects the request unless its shared key belongs to the
// role holding p.
func requirePermission(authorizer *access.Authorizer, p access.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := authorizer.Authorize(p, presentedKey(c))
		if err != nil {
			return err
		}
		c.Locals(localsRole, role)
		return c.Next()
	}
}
