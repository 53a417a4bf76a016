package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "andonation/internal/log"
	"andonation/internal/services"
)

const csrfCookie = "csrf_"

// ErrorHandler logs the failure and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	applog.Error(c, "server.error", err, nil)
	if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
		"Message": "Something went wrong. Please try again.",
	}); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
	}
	return nil
}

type MiddlewareConfig struct {
	// CookieKey is a base64 32-byte key for encryptcookie.
	CookieKey     string
	SecureCookies bool
}

// Middleware installs the request pipeline every page relies on: request ids,
// security headers, cookie encryption, the session user and CSRF protection.
func Middleware(app *fiber.App, auth *services.AuthService, cfg MiddlewareConfig) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.CookieKey, Except: []string{csrfCookie}}))
	app.Use(AttachUser(auth))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		ContextKey:     "csrf",
		CookieName:     csrfCookie,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.SecureCookies,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
}
