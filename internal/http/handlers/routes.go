package handlers

import (
	"andonation/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// Mount registers the application routes. Global middleware and per-route
// limiters are the caller's business.
func Mount(app *fiber.App, d *Deps) {
	app.Get("/", d.CampaignHandler.Home)

	// Auth
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Get("/auth/:provider", d.AuthHandler.Start)
	app.Get("/auth/:provider/callback", d.AuthHandler.Callback)

	// Campaigns
	app.Get("/campaigns/new", RequireUser(d.Auth), d.CampaignHandler.New)
	app.Post("/campaigns", RequireUser(d.Auth), d.CampaignHandler.Create)
	app.Get("/campaigns/:id", d.CampaignHandler.Show)

	// My Andonation
	my := app.Group("/my_andonation", RequireUser(d.Auth))
	my.Get("/", d.DashboardHandler.Show)
	my.Get("/campaigns", d.DashboardHandler.Campaigns)
	my.Get("/transactions", d.DashboardHandler.Transactions)
	my.Get("/distributions", RequireRole(d.Auth, domain.RoleDistributor), d.DashboardHandler.Distributions)

	// Admin
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/users", d.AdminHandler.UsersPage)
	admin.Post("/users/:id/roles", d.AdminHandler.GrantRole)
	admin.Post("/users/:id/delete", d.AdminHandler.DeleteUser)
}
