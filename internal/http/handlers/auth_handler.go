package handlers

import (
	"strings"
	"time"

	"andonation/internal/auth"
	"andonation/internal/log"
	"andonation/internal/services"
	"andonation/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	Auth      *services.AuthService
	Providers *auth.Registry
}

func setSID(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
	})
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		setSID(c, sid)
	}
	return sid
}

// issueSession hands out sid after a successful sign-in. A session id the
// browser carried before signing in is never reused.
func (h *AuthHandler) issueSession(c *fiber.Ctx, sid string) {
	if old := c.Cookies("sid"); old != "" && old != sid {
		_ = h.Auth.Logout(old)
	}
	setSID(c, sid)
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := uuid.NewString()
	email := c.FormValue("email")
	pass := c.FormValue("password")
	fail := func(reason string) error {
		fields := map[string]any{"email": email}
		if reason != "" {
			fields["reason"] = reason
		}
		log.Security(c, "auth.login.fail", fields)
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies(csrfCookie)})
	}
	if _, ok := validate.Email(email); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}
	if _, err := h.Auth.Login(sid, email, pass); err != nil {
		return fail("")
	}
	h.issueSession(c, sid)

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	setFlash(c, services.NoticeSuccess, "Signed in successfully.")
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	setFlash(c, services.NoticeSuccess, "Signed out successfully.")
	return c.Redirect("/")
}

// GET /auth/:provider
func (h *AuthHandler) Start(c *fiber.Ctx) error {
	p, err := h.Providers.Lookup(c.Params("provider"))
	if err != nil {
		return notFound(c, "Unknown sign-in provider")
	}
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})
	return c.Redirect(p.AuthCodeURL(state))
}

// GET /auth/:provider/callback
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	p, err := h.Providers.Lookup(c.Params("provider"))
	if err != nil {
		return notFound(c, "Unknown sign-in provider")
	}
	display := p.DisplayName()

	expected := c.Cookies(stateCookie)
	c.Cookie(&fiber.Cookie{Name: stateCookie, Value: "", Path: "/auth", HTTPOnly: true, Expires: time.Now().Add(-time.Hour)})

	if e := c.Query("error"); e != "" {
		return h.finish(c, p, h.Auth.Fail(display, strings.ReplaceAll(e, "_", " "), nil))
	}
	if expected == "" || c.Query("state") != expected {
		return h.finish(c, p, h.Auth.Fail(display, "invalid state", nil))
	}
	payload, err := p.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		log.Error(c, "auth.callback.exchange", err, map[string]any{"provider": p.Name()})
		return h.finish(c, p, h.Auth.Fail(display, auth.ErrExchange.Error(), nil))
	}

	sid := uuid.NewString()
	res, err := h.Auth.CompleteFederated(c.UserContext(), sid, display, payload)
	if err != nil {
		return err
	}
	if res.SignedIn {
		h.issueSession(c, sid)
	}
	return h.finish(c, p, res)
}

// finish always lands on the root page; the notice tells success from failure.
func (h *AuthHandler) finish(c *fiber.Ctx, p auth.Provider, res services.CallbackResult) error {
	c.Locals("candidate", res.Candidate)
	fields := map[string]any{"provider": p.Name()}
	if res.Candidate != nil && res.Candidate.Email != "" {
		fields["email"] = res.Candidate.Email
	}
	if res.SignedIn {
		log.Audit(c, "auth.callback.success", fields)
	} else {
		fields["reason"] = res.Reason
		log.Security(c, "auth.callback.fail", fields)
	}
	setFlash(c, res.NoticeKind, res.Notice)
	return c.Redirect("/")
}
