// Package fund talks to the external fund-management ledger that owns
// balances, transactions and distributions.
package fund

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"andonation/internal/domain"
)

var ErrUnexpectedStatus = errors.New("fund: unexpected status")

// Client is the one contract the application needs from the ledger.
type Client interface {
	Balance(ctx context.Context, u *domain.User) (float64, error)
	Transactions(ctx context.Context, u *domain.User) ([]domain.Transaction, error)
	// UserTransactions returns entries the user initiated, i.e. distributions.
	UserTransactions(ctx context.Context, u *domain.User) ([]domain.Transaction, error)
	CreateAccount(ctx context.Context, u *domain.User) (string, error)
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Rate    float64 // requests per second; <= 0 disables throttling
	HTTP    *http.Client
}

type HTTPClient struct {
	base    string
	key     string
	hc      *http.Client
	limiter *rate.Limiter
}

func NewHTTPClient(o Options) *HTTPClient {
	hc := o.HTTP
	if hc == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if o.Rate > 0 {
		burst := int(o.Rate)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.Rate), burst)
	}
	return &HTTPClient{base: strings.TrimRight(o.BaseURL, "/"), key: o.APIKey, hc: hc, limiter: lim}
}

// do sends one request and returns the response body of a 2xx answer.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fund: rate wait: %w", err)
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("fund: encode %s: %w", path, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("fund: build %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fund: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s -> %d", ErrUnexpectedStatus, method, path, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("fund: read %s: %w", path, err)
	}
	return b, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	b, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("fund: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) transactions(ctx context.Context, path string) ([]domain.Transaction, error) {
	b, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	txs, err := domain.DecodeTransactions(b)
	if err != nil {
		return nil, fmt.Errorf("fund: decode %s: %w", path, err)
	}
	return txs, nil
}

func accountPath(u *domain.User, suffix string) string {
	return "/accounts/" + url.PathEscape(u.AccountID) + suffix
}

func (c *HTTPClient) Balance(ctx context.Context, u *domain.User) (float64, error) {
	if u == nil || u.AccountID == "" {
		return 0, nil
	}
	var out struct {
		Amount float64 `json:"amount"`
	}
	if err := c.doJSON(ctx, http.MethodGet, accountPath(u, "/balance"), nil, &out); err != nil {
		return 0, err
	}
	return out.Amount, nil
}

func (c *HTTPClient) Transactions(ctx context.Context, u *domain.User) ([]domain.Transaction, error) {
	if u == nil || u.AccountID == "" {
		return nil, nil
	}
	return c.transactions(ctx, accountPath(u, "/transactions"))
}

func (c *HTTPClient) UserTransactions(ctx context.Context, u *domain.User) ([]domain.Transaction, error) {
	if u == nil || u.AccountID == "" {
		return nil, nil
	}
	return c.transactions(ctx, accountPath(u, "/transactions?role=initiator"))
}

func (c *HTTPClient) CreateAccount(ctx context.Context, u *domain.User) (string, error) {
	in := map[string]string{"description": u.Email, "reference": u.ID}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/accounts", in, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("fund: create account: empty id")
	}
	return out.ID, nil
}

// Offline stands in when no ledger is configured.
type Offline struct{}

func (Offline) Balance(context.Context, *domain.User) (float64, error) { return 0, nil }
func (Offline) Transactions(context.Context, *domain.User) ([]domain.Transaction, error) {
	return nil, nil
}
func (Offline) UserTransactions(context.Context, *domain.User) ([]domain.Transaction, error) {
	return nil, nil
}
func (Offline) CreateAccount(context.Context, *domain.User) (string, error) { return "", nil }
