package handlers

import (
	"errors"

	applog "andonation/internal/log"
	"andonation/internal/repos"
	"andonation/internal/services"
	"andonation/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Users *services.UserService
}

// GET /admin/users lists every user with their roles.
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "admin_users", fiber.Map{"Users": users})
}

// POST /admin/users/:id/roles
func (h *AdminHandler) GrantRole(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	role, err := h.Users.AddRole(id, c.FormValue("role"))
	switch {
	case errors.Is(err, services.ErrInvalidRole):
		applog.Security(c, "validation.fail", map[string]any{"field": "role"})
		return c.Status(400).SendString("invalid role")
	case errors.Is(err, repos.ErrNotFound):
		return notFound(c, "User not found")
	case err != nil:
		applog.Error(c, "admin.users.role.fail", err, map[string]any{"user_id": id})
		return c.Status(500).SendString("could not grant role")
	}
	applog.Audit(c, "admin.users.role", map[string]any{"user_id": id, "role": string(role)})
	return c.Redirect("/admin/users")
}

// DeleteUser removes a user with their sessions, roles and campaigns.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(400).SendString("missing id")
	}
	if u := currentUser(c); u != nil && u.ID == id {
		return c.Status(400).SendString("cannot delete yourself")
	}
	if err := h.Users.Delete(id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"user_id": id})
		return c.Status(400).SendString("could not delete user")
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.Redirect("/admin/users")
}
