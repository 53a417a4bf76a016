package handlers

import (
	"errors"

	applog "andonation/internal/log"
	"andonation/internal/repos"
	"andonation/internal/services"
	"andonation/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CampaignHandler struct {
	Campaigns *services.CampaignService
}

// GET /
func (h *CampaignHandler) Home(c *fiber.Ctx) error {
	list, err := h.Campaigns.Recent(12)
	if err != nil {
		applog.Error(c, "home.campaigns.fail", err, nil)
		list = nil
	}
	return render(c, "home", fiber.Map{"Campaigns": list})
}

// GET /campaigns/new
func (h *CampaignHandler) New(c *fiber.Ctx) error {
	return render(c, "campaign_new", fiber.Map{"Form": services.CampaignInput{}, "Errors": services.FieldErrors{}})
}

// POST /campaigns
func (h *CampaignHandler) Create(c *fiber.Ctx) error {
	in := services.CampaignInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Amount:      c.FormValue("amount"),
		Deadline:    c.FormValue("deadline"),
	}
	camp, err := h.Campaigns.Create(currentUser(c), in)
	var fe services.FieldErrors
	if errors.As(err, &fe) {
		applog.Security(c, "validation.fail", map[string]any{"form": "campaign", "fields": len(fe)})
		c.Status(fiber.StatusBadRequest)
		return render(c, "campaign_new", fiber.Map{"Form": in, "Errors": fe})
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "campaign.create", map[string]any{"campaign_id": camp.ID})
	setFlash(c, services.NoticeSuccess, "Campaign created.")
	return c.Redirect("/campaigns/" + camp.ID)
}

// GET /campaigns/:id
func (h *CampaignHandler) Show(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Campaign not found")
	}
	camp, err := h.Campaigns.Get(id)
	if errors.Is(err, repos.ErrNotFound) {
		return notFound(c, "Campaign not found")
	}
	if err != nil {
		return err
	}
	return render(c, "campaign", fiber.Map{"Campaign": camp})
}
