package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fixbay/internal/domain"
	applog "fixbay/internal/log"
	"fixbay/internal/repos"
)

// RequireUser resolves the trusted session cookie to a user and stows it in
// Locals. This subsystem does no authentication of its own; the session was
// established by the auth flow elsewhere.
func RequireUser(users *repos.UserRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not signed in"})
		}
		u, err := users.SessionUser(sid)
		if err != nil || u == nil {
			applog.Security(c, "access.denied.session", map[string]any{"sid": sid})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not signed in"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// currentActor reads the user RequireUser attached.
func currentActor(c *fiber.Ctx) (domain.Actor, bool) {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: u.ID, Role: u.Role}, true
}
