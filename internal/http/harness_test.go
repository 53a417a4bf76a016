package handlers_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/stretchr/testify/require"

	"andonation/internal/auth"
	"andonation/internal/domain"
	"andonation/internal/http/handlers"
	"andonation/internal/repos"
)

// fakeLedger stands in for the fund service.
type fakeLedger struct {
	mu      sync.Mutex
	balance float64
	txs     []domain.Transaction
	dist    []domain.Transaction
	err     error
	created int
}

func (f *fakeLedger) Balance(context.Context, *domain.User) (float64, error) {
	return f.balance, f.err
}

func (f *fakeLedger) Transactions(context.Context, *domain.User) ([]domain.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeLedger) UserTransactions(context.Context, *domain.User) ([]domain.Transaction, error) {
	return f.dist, f.err
}

func (f *fakeLedger) CreateAccount(context.Context, *domain.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return fmt.Sprintf("acc-%d", f.created), f.err
}

func ledgerTxs(n int, typ string) []domain.Transaction {
	out := make([]domain.Transaction, n)
	for i := range out {
		out[i] = domain.Transaction{
			ID:          fmt.Sprintf("t-%d", i),
			Description: fmt.Sprintf("Donation %d", i),
			Amount:      25,
			Type:        typ,
			EffectiveAt: time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

type harness struct {
	app       *fiber.App
	deps      *handlers.Deps
	users     *repos.UserRepo
	campaigns *repos.CampaignRepo
	ledger    *fakeLedger
	mock      *auth.Mock
	cookieKey string
	csrfToken string
}

const callbackPath = "/auth/google_oauth2/callback"

func christopher() auth.Payload {
	return auth.Payload{UID: "123545", Email: "christopher@andela.co", FirstName: "Christopher", LastName: "Jones"}
}

// newHarness wires the real routes and middleware against an in-memory
// database, a fake ledger and the mock identity provider.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ledger := &fakeLedger{}
	mock := auth.NewMock(callbackPath, christopher())
	deps := handlers.NewDeps(db, ledger, auth.NewRegistry(mock), nil)
	key := encryptcookie.GenerateKey()

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	handlers.Middleware(app, deps.Auth, handlers.MiddlewareConfig{CookieKey: key})
	handlers.Mount(app, deps)

	return &harness{
		app:       app,
		deps:      deps,
		users:     repos.NewUserRepo(db),
		campaigns: repos.NewCampaignRepo(db),
		ledger:    ledger,
		mock:      mock,
		cookieKey: key,
	}
}

// signIn stores a user with the given roles and returns a bound session id.
func (h *harness) signIn(t *testing.T, email string, roles ...domain.Role) (*domain.User, string) {
	t.Helper()
	u := &domain.User{
		Email:     email,
		FirstName: "Christopher",
		LastName:  "Jones",
		Roles:     domain.NewRoleSet(append([]domain.Role{domain.RoleMember}, roles...)...),
	}
	require.NoError(t, h.users.Create(u))
	sid := "sid-" + u.ID
	require.NoError(t, h.users.BindSession(sid, u.ID))
	return u, sid
}

// do sends req with plain cookie values; they are encrypted the way the
// browser would have received them.
func (h *harness) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	for _, c := range cookies {
		v := c.Value
		if c.Name != "csrf_" {
			enc, err := encryptcookie.EncryptCookie(v, h.cookieKey)
			require.NoError(t, err)
			v = enc
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: v})
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (h *harness) get(t *testing.T, path, sid string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid == "" {
		return h.do(t, req)
	}
	return h.do(t, req, &http.Cookie{Name: "sid", Value: sid})
}

// csrf returns a token issued by the CSRF middleware on a safe request.
func (h *harness) csrf(t *testing.T) string {
	t.Helper()
	if h.csrfToken == "" {
		resp, _ := h.get(t, "/login", "")
		h.csrfToken = h.cookieValue(t, resp, "csrf_")
		require.NotEmpty(t, h.csrfToken, "csrf cookie missing")
	}
	return h.csrfToken
}

func (h *harness) post(t *testing.T, path, sid string, form url.Values) (*http.Response, string) {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	tok := h.csrf(t)
	form.Set("csrf", tok)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	cookies := []*http.Cookie{{Name: "csrf_", Value: tok}}
	if sid != "" {
		cookies = append(cookies, &http.Cookie{Name: "sid", Value: sid})
	}
	return h.do(t, req, cookies...)
}

// cookieValue returns the decrypted value of a cookie set by resp.
func (h *harness) cookieValue(t *testing.T, resp *http.Response, name string) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name != name {
			continue
		}
		if name == "csrf_" || c.Value == "" {
			return c.Value
		}
		v, err := encryptcookie.DecryptCookie(c.Value, h.cookieKey)
		require.NoError(t, err)
		return v
	}
	return ""
}

func (h *harness) flashOf(t *testing.T, resp *http.Response) handlers.Flash {
	t.Helper()
	f, ok := handlers.ParseFlash(h.cookieValue(t, resp, "flash"))
	require.True(t, ok, "flash cookie missing")
	return f
}
