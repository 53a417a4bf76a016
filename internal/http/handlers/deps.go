package handlers

import (
	"andonation/internal/auth"
	"andonation/internal/fund"
	"andonation/internal/repos"
	"andonation/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	CampaignHandler  *CampaignHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, ledger fund.Client, providers *auth.Registry, allowedDomains []string) *Deps {
	userRepo := repos.NewUserRepo(db)
	campRepo := repos.NewCampaignRepo(db)

	authSvc := &services.AuthService{Users: userRepo, Fund: ledger, AllowedDomains: allowedDomains}
	userSvc := services.NewUserService(userRepo, ledger)
	campSvc := services.NewCampaignService(campRepo)
	dashSvc := services.NewDashboardService(campSvc, userSvc, ledger)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc, Providers: providers},
		DashboardHandler: &DashboardHandler{Dashboard: dashSvc, CampaignSvc: campSvc, Users: userSvc},
		CampaignHandler:  &CampaignHandler{Campaigns: campSvc},
		AdminHandler:     &AdminHandler{Users: userSvc},
	}
}
