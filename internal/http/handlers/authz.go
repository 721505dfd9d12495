package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "chidi/internal/log"
	"chidi/internal/services"
)

// TokenCookie carries the bearer token for browser pages.
const TokenCookie = "token"

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Cookies(TokenCookie)
}

// RequireBearer admits requests carrying a valid token in the Authorization
// header or the token cookie, and stores the user id and role in Locals.
func RequireBearer(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			applog.Security(c, "auth.missing_token", nil)
			return unauthorized(c)
		}
		claims, err := auth.Verify(raw)
		if err != nil {
			applog.Security(c, "auth.bad_token", nil)
			return unauthorized(c)
		}
		c.Locals(applog.UserKey, claims.Subject)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}
	return c.Status(fiber.StatusUnauthorized).Render("notfound", fiber.Map{"Message": "Please sign in to continue"})
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals(applog.UserKey).(string)
	return uid
}

// RequireOwner runs after RequireBearer and admits only the shop owner.
func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != services.RoleOwner {
			applog.Security(c, "access.denied.owner", map[string]any{"role": role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}
