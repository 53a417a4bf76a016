package handlers

import (
	applog "andonation/internal/log"
	"andonation/internal/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	Dashboard   *services.DashboardService
	CampaignSvc *services.CampaignService
	Users       *services.UserService
}

func (h *DashboardHandler) failed(c *fiber.Ctx, action string, err error) error {
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your account. Please try again."})
}

// GET /my_andonation
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	u := currentUser(c)
	v, err := h.Dashboard.Compose(c.UserContext(), u)
	if err != nil {
		return h.failed(c, "dashboard.compose.fail", err)
	}
	return render(c, "my_andonation", fiber.Map{"View": v})
}

// GET /my_andonation/campaigns
func (h *DashboardHandler) Campaigns(c *fiber.Ctx) error {
	list, err := h.CampaignSvc.Active(currentUser(c).ID)
	if err != nil {
		return h.failed(c, "dashboard.campaigns.fail", err)
	}
	return render(c, "my_campaigns", fiber.Map{"Campaigns": list})
}

// GET /my_andonation/transactions
func (h *DashboardHandler) Transactions(c *fiber.Ctx) error {
	bal, txs, err := h.Dashboard.History(c.UserContext(), currentUser(c))
	if err != nil {
		return h.failed(c, "dashboard.transactions.fail", err)
	}
	return render(c, "my_transactions", fiber.Map{"Balance": bal, "Transactions": txs})
}

// GET /my_andonation/distributions (distributors only)
func (h *DashboardHandler) Distributions(c *fiber.Ctx) error {
	list, err := h.Users.Distributions(c.UserContext(), currentUser(c))
	if err != nil {
		return h.failed(c, "dashboard.distributions.fail", err)
	}
	return render(c, "my_distributions", fiber.Map{"Distributions": list})
}
