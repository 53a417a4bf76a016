package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"andonation/internal/domain"
)

const flashCookie = "flash"

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func encodeFlash(kind, msg string) string {
	return url.QueryEscape(kind) + "|" + url.QueryEscape(msg)
}

// ParseFlash decodes a flash cookie value.
func ParseFlash(v string) (Flash, bool) {
	kind, msg, ok := strings.Cut(v, "|")
	if !ok {
		return Flash{}, false
	}
	k, err1 := url.QueryUnescape(kind)
	m, err2 := url.QueryUnescape(msg)
	if err1 != nil || err2 != nil || m == "" {
		return Flash{}, false
	}
	return Flash{Kind: k, Message: m}, true
}

func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    encodeFlash(kind, msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func popFlash(c *fiber.Ctx) (Flash, bool) {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return Flash{}, false
	}
	c.ClearCookie(flashCookie)
	return ParseFlash(raw)
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := currentUser(c); u != nil {
		data["User"] = u
		data["CanManageUsers"] = u.Can(domain.ManageUsers)
	}
	if f, ok := popFlash(c); ok {
		data["Flash"] = f
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies(csrfCookie)
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}
