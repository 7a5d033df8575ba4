package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"brokerage/internal/lead"
	applog "brokerage/internal/log"
	"brokerage/internal/repos"
	"brokerage/web"
)

// NewEngine loads the embedded page templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(templateFuncs())
	return engine
}

// ErrorHandler logs and shows a friendly message without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Security(c, "request.rejected", map[string]any{"status": code, "reason": msg})
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	c.Status(code)
	if rerr := render(c, "notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp builds the whole site: middlewares, pages, admin area and JSON API.
func NewApp(d *Deps) *fiber.App {
	cfg := d.Cfg
	app := fiber.New(fiber.Config{
		Views:        NewEngine(),
		ErrorHandler: ErrorHandler,
		BodyLimit:    max(cfg.BodyLimit, 1<<20),
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{
		// listing photos may be served from other origins
		CrossOriginEmbedderPolicy: "unsafe-none",
		CrossOriginResourcePolicy: "cross-origin",
	}))
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies(sessionCookie); sid != "" {
			if u, err := d.Guard.Auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals(applog.UserKey, u)
			}
		}
		return c.Next()
	})
	app.Use(func(c *fiber.Ctx) error {
		s, err := d.Settings.Get(c.UserContext())
		if err != nil {
			applog.Error(c, "settings.load.fail", err, nil)
			s = repos.DefaultSiteSettings()
		}
		c.Locals(siteKey, s)
		c.Locals(leadKey, lead.NewBuilder(cfg.WhatsAppDomain, s))
		return c.Next()
	})
	if cfg.RatePerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RatePerMinute,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return p == "/healthz" || p == "/metrics"
			},
		}))
	}
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		ContextKey:     "csrf",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// bearer-token API, no cookies involved
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			c.Status(fiber.StatusForbidden)
			return render(c, "notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", d.Metrics.Handler())

	// ---------- Public pages ----------
	cat := &CatalogHandler{Store: d.Store, Favs: d.Favs, Metrics: d.Metrics}
	favs := &FavoritesHandler{Store: d.Store, Favs: d.Favs, Metrics: d.Metrics}
	app.Get("/", cat.Home)
	app.Get("/properties", cat.List)
	app.Get("/properties/:id", cat.Detail)
	app.Get("/contact", cat.Contact)
	app.Get("/favorites", favs.List)
	app.Post("/favorites/:id", favs.Toggle)

	// ---------- Admin ----------
	loginLimit := cfg.LoginRate
	if loginLimit <= 0 {
		loginLimit = 10
	}
	loginLimiter := limiter.New(limiter.Config{
		Max:        loginLimit,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, retry later"})
			}
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "admin_login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
	authH := &AuthHandler{Guard: d.Guard, Tokens: d.Tokens, Metrics: d.Metrics}
	adminH := &AdminHandler{
		Store:         d.Store,
		Settings:      d.Settings,
		Metrics:       d.Metrics,
		Retry:         d.Retry,
		MaxImageBytes: cfg.MaxImageBytes,
	}

	// login and logout stay reachable without the guard
	app.Get("/admin/login", authH.LoginForm)
	app.Post("/admin/login", loginLimiter, authH.Login)
	app.Post("/admin/logout", authH.Logout)

	admin := app.Group("/admin", RequireAdmin(d.Guard))
	admin.Get("/", adminH.Dashboard)
	admin.Get("/properties", adminH.Properties)
	admin.Get("/properties/new", adminH.NewForm)
	admin.Post("/properties", adminH.Create)
	admin.Get("/properties/:id/edit", adminH.EditForm)
	admin.Post("/properties/:id", adminH.Update)
	admin.Post("/properties/:id/delete", adminH.Delete)
	admin.Get("/settings", adminH.SettingsForm)
	admin.Post("/settings", adminH.SaveSettings)

	// ---------- JSON API ----------
	apiH := &APIHandler{Store: d.Store, Cache: d.Cache, Metrics: d.Metrics, MaxImageBytes: cfg.MaxImageBytes}
	api := app.Group("/api/v1")
	api.Get("/properties", apiH.List)
	api.Get("/properties/:id", apiH.Get)
	api.Get("/properties/:id/lead", apiH.Lead)
	api.Get("/cities", apiH.Cities)
	api.Get("/featured", apiH.Featured)
	api.Post("/auth/token", loginLimiter, authH.Token)

	apiAdmin := api.Group("/admin", RequireAdminToken(d.Guard, d.Tokens))
	apiAdmin.Post("/properties", apiH.Create)
	apiAdmin.Put("/properties/:id", apiH.Update)
	apiAdmin.Delete("/properties/:id", apiH.Delete)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return notFound(c, "Page not found")
	})
	return app
}
