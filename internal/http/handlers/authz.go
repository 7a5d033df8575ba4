package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "brokerage/internal/log"
	"brokerage/internal/services"
)

const sessionCookie = "sid"

// RequireAdmin lets a request through only when the guard confirms an admin
// session. Everything else is sent to the login page with 303 so the browser
// replaces the protected URL instead of stacking it in history.
func RequireAdmin(g *services.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sessionCookie)
		state, u, err := g.Check(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "auth.guard.error", err, nil)
		}
		if state != services.StateAdmin {
			if sid != "" {
				applog.Security(c, "access.denied.admin", map[string]any{"state": string(state)})
				clearSession(c)
			}
			c.Locals(applog.UserKey, nil)
			return c.Redirect("/admin/login", fiber.StatusSeeOther)
		}
		c.Locals(applog.UserKey, u)
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Next()
	}
}

// RequireAdminToken is the bearer-token flavour for the JSON admin API. The
// JWT only carries the session id; the guard decides on every request.
func RequireAdminToken(g *services.Guard, tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		sid, err := tokens.Parse(raw)
		if err != nil {
			applog.Security(c, "api.token.invalid", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		state, u, err := g.Check(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "auth.guard.error", err, nil)
		}
		if state != services.StateAdmin {
			applog.Security(c, "access.denied.api", map[string]any{"state": string(state)})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}
		c.Locals(applog.UserKey, u)
		return c.Next()
	}
}

func setSession(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // set true behind HTTPS
	})
}

func clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
