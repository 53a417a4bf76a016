// Package auth adapts federated identity providers to a single callback payload.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var (
	ErrUnknownProvider = errors.New("unknown identity provider")
	ErrExchange        = errors.New("could not verify identity")
)

// Payload is what a provider tells us about the person who signed in.
type Payload struct {
	Provider  string
	UID       string
	Email     string
	FirstName string
	LastName  string
	Image     string
}

type Provider interface {
	Name() string        // route segment, e.g. "google_oauth2"
	DisplayName() string // human name used in notices, e.g. "Google"
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Payload, error)
}

type Registry struct {
	providers map[string]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

const (
	GoogleName    = "google_oauth2"
	GoogleDisplay = "Google"
	googleIssuer  = "https://accounts.google.com"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google performs the authorization-code exchange and verifies the returned
// ID token against Google's published keys.
type Google struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (g *Google) Name() string        { return GoogleName }
func (g *Google) DisplayName() string { return GoogleDisplay }

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *Google) Exchange(ctx context.Context, code string) (*Payload, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", ErrExchange, err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("%w: missing id_token", ErrExchange)
	}
	idt, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	var claims struct {
		Email      string `json:"email"`
		Verified   bool   `json:"email_verified"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := idt.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", ErrExchange, err)
	}
	if !claims.Verified {
		return nil, fmt.Errorf("%w: email not verified", ErrExchange)
	}
	return &Payload{
		Provider:  GoogleName,
		UID:       idt.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Image:     claims.Picture,
	}, nil
}

// Mock answers every exchange with a fixed payload. It is selected by the
// auth test-mode setting and never talks to the network.
type Mock struct {
	ProviderName string
	Display      string
	CallbackURL  string
	Payload      Payload
	Err          error
}

func NewMock(callbackURL string, p Payload) *Mock {
	p.Provider = GoogleName
	return &Mock{ProviderName: GoogleName, Display: GoogleDisplay, CallbackURL: callbackURL, Payload: p}
}

func (m *Mock) Name() string        { return m.ProviderName }
func (m *Mock) DisplayName() string { return m.Display }

// AuthCodeURL skips the provider and points straight at our own callback.
func (m *Mock) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("code", "mock")
	q.Set("state", state)
	return m.CallbackURL + "?" + q.Encode()
}

func (m *Mock) Exchange(_ context.Context, _ string) (*Payload, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p := m.Payload
	return &p, nil
}
