package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"

	"andonation/internal/auth"
	"andonation/internal/config"
	"andonation/internal/fund"
	"andonation/internal/http/handlers"
	applog "andonation/internal/log"
	"andonation/internal/repos"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newLedger(cfg config.Config) fund.Client {
	if cfg.Fund.URL == "" {
		log.Printf("[warn] FUND_URL not set; balances and transactions will be empty")
		return fund.Offline{}
	}
	return fund.NewHTTPClient(fund.Options{
		BaseURL: cfg.Fund.URL,
		APIKey:  cfg.Fund.APIKey,
		Timeout: cfg.Fund.Timeout,
		Rate:    cfg.Fund.Rate,
	})
}

func newProviders(ctx context.Context, cfg config.Config) (*auth.Registry, error) {
	callback := cfg.CallbackURL(auth.GoogleName)
	if cfg.Auth.TestMode {
		log.Printf("[auth] test mode: google_oauth2 answers with %s", cfg.Auth.MockEmail)
		return auth.NewRegistry(auth.NewMock(callback, auth.Payload{
			UID:       cfg.Auth.MockUID,
			Email:     cfg.Auth.MockEmail,
			FirstName: cfg.Auth.MockFirstName,
			LastName:  cfg.Auth.MockLastName,
		})), nil
	}
	if cfg.Auth.GoogleClientID == "" {
		return nil, fmt.Errorf("AUTH_GOOGLE_CLIENT_ID is required unless AUTH_TEST_MODE is set")
	}
	g, err := auth.NewGoogle(ctx, auth.GoogleConfig{
		ClientID:     cfg.Auth.GoogleClientID,
		ClientSecret: cfg.Auth.GoogleClientSecret,
		RedirectURL:  callback,
	})
	if err != nil {
		return nil, err
	}
	return auth.NewRegistry(g), nil
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	providers, err := newProviders(ctx, cfg)
	if err != nil {
		return err
	}
	deps := handlers.NewDeps(db, newLedger(cfg), providers, cfg.Auth.AllowedDomains)

	cookieKey := cfg.CookieKey
	if cookieKey == "" {
		cookieKey = encryptcookie.GenerateKey()
		log.Printf("[warn] COOKIE_KEY not set; sessions will not survive a restart")
	}

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("./web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	handlers.Middleware(app, deps.Auth, handlers.MiddlewareConfig{
		CookieKey:     cookieKey,
		SecureCookies: strings.HasPrefix(cfg.BaseURL, "https://"),
	})
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
	}))

	app.Static("/static", "./web/static")

	// Throttle credential and callback endpoints ahead of the handlers.
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}))
	app.Get("/auth/:provider/callback", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}))

	handlers.Mount(app, deps)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	return app.Listen(":" + cfg.Port)
}
