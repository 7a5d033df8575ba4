package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "brokerage/internal/log"
	"brokerage/internal/metrics"
	"brokerage/internal/services"
	"brokerage/internal/validate"
)

const badCredsMsg = "Invalid email or password"

type AuthHandler struct {
	Guard   *services.Guard
	Tokens  *services.TokenService
	Metrics *metrics.Metrics
}

// GET /admin/login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "admin_login", fiber.Map{"Err": ""})
}

// POST /admin/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	fail := func(status int, msg, reason string) error {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
		h.Metrics.Logins.WithLabelValues(reason).Inc()
		c.Status(status)
		return render(c, "admin_login", fiber.Map{"Err": msg, "Email": email})
	}
	if _, ok := validate.Email(email); !ok {
		return fail(fiber.StatusUnauthorized, badCredsMsg, "bad_format")
	}
	if !validate.Password(pass) {
		return fail(fiber.StatusUnauthorized, badCredsMsg, "bad_password_format")
	}

	sess, err := h.Guard.Login(c.UserContext(), email, pass)
	switch {
	case errors.Is(err, services.ErrBadCreds):
		return fail(fiber.StatusUnauthorized, badCredsMsg, "bad_credentials")
	case errors.Is(err, services.ErrAccessDenied):
		clearSession(c)
		return fail(fiber.StatusForbidden, "Access denied: this account cannot manage listings.", "not_admin")
	case err != nil:
		applog.Error(c, "auth.login.error", err, map[string]any{"email": email})
		h.Metrics.Logins.WithLabelValues("error").Inc()
		c.Status(fiber.StatusServiceUnavailable)
		return render(c, "admin_login", fiber.Map{"Err": "Sign-in is unavailable right now. Please try again.", "Email": email})
	}

	setSession(c, sess.Token, sess.ExpiresAt)
	h.Metrics.Logins.WithLabelValues("success").Inc()
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// POST /admin/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies(sessionCookie)
	if err := h.Guard.Logout(c.UserContext(), sid); err != nil {
		applog.Error(c, "auth.logout.fail", err, nil)
	}
	clearSession(c)
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/admin/login", fiber.StatusSeeOther)
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, ok := validate.Email(req.Email); !ok || req.Password == "" {
		applog.Security(c, "auth.token.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrBadCreds.Error()})
	}
	sess, err := h.Guard.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrBadCreds):
		applog.Security(c, "auth.token.fail", map[string]any{"email": req.Email, "reason": "bad_credentials"})
		h.Metrics.Logins.WithLabelValues("bad_credentials").Inc()
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAccessDenied):
		applog.Security(c, "auth.token.fail", map[string]any{"email": req.Email, "reason": "not_admin"})
		h.Metrics.Logins.WithLabelValues("not_admin").Inc()
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": services.ErrAccessDenied.Error()})
	case err != nil:
		return err
	}
	tok, err := h.Tokens.Issue(sess)
	if err != nil {
		return err
	}
	h.Metrics.Logins.WithLabelValues("success").Inc()
	applog.Audit(c, "auth.token.issued", map[string]any{"email": req.Email})
	return c.JSON(fiber.Map{"token": tok, "expiresAt": sess.ExpiresAt})
}
