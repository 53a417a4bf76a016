package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"andonation/internal/domain"
	"andonation/internal/fund"
)

const (
	// CampaignsInline is how many campaigns the dashboard lists before linking
	// to the full listing.
	CampaignsInline = 4
	// HistoryRouteAt is the transaction count from which the balance links to
	// the dedicated history page instead of the in-page anchor.
	HistoryRouteAt = 3
	// DistributionsInline is the largest distribution count shown without a
	// "see all" link.
	DistributionsInline = 2

	HistoryAnchor = "/my_andonation#my_account_history"
	HistoryRoute  = "/my_andonation/transactions"
)

type DistributionsView struct {
	Items []domain.Transaction
	Count int
}

func (d *DistributionsView) ShowAll() bool { return d.Count > DistributionsInline }

// Inline returns the distributions rendered on the dashboard itself.
func (d *DistributionsView) Inline() []domain.Transaction {
	if len(d.Items) > DistributionsInline {
		return d.Items[:DistributionsInline]
	}
	return d.Items
}

type DashboardView struct {
	User          *domain.User
	Campaigns     []domain.Campaign // inline subset
	CampaignCount int
	Balance       float64
	Transactions  []domain.Transaction
	ShowUsers     bool
	Distributions *DistributionsView // nil unless the user distributes
}

func (v *DashboardView) ShowAllCampaigns() bool { return v.CampaignCount > CampaignsInline }

func (v *DashboardView) TransactionCount() int { return len(v.Transactions) }

func (v *DashboardView) HistoryOnPage() bool { return len(v.Transactions) < HistoryRouteAt }

func (v *DashboardView) HistoryLink() string {
	if v.HistoryOnPage() {
		return HistoryAnchor
	}
	return HistoryRoute
}

type DashboardService struct {
	Campaigns *CampaignService
	Users     *UserService
	Fund      fund.Client
}

func NewDashboardService(c *CampaignService, u *UserService, f fund.Client) *DashboardService {
	return &DashboardService{Campaigns: c, Users: u, Fund: f}
}

// Compose gathers every dashboard section for u. The reads are independent
// and run concurrently; the first failure fails the whole view.
func (s *DashboardService) Compose(ctx context.Context, u *domain.User) (*DashboardView, error) {
	v := &DashboardView{User: u, ShowUsers: u.Can(domain.ManageUsers)}

	var campaigns []domain.Campaign
	var dist []domain.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		campaigns, err = s.Campaigns.Active(u.ID)
		return err
	})
	g.Go(func() error {
		var err error
		v.Balance, err = s.Fund.Balance(gctx, u)
		return err
	})
	g.Go(func() error {
		var err error
		v.Transactions, err = s.Fund.Transactions(gctx, u)
		return err
	})
	if u.Can(domain.Distribute) {
		g.Go(func() error {
			var err error
			dist, err = s.Users.Distributions(gctx, u)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v.CampaignCount = len(campaigns)
	v.Campaigns = campaigns
	if len(campaigns) > CampaignsInline {
		v.Campaigns = campaigns[:CampaignsInline]
	}
	if u.Can(domain.Distribute) {
		v.Distributions = &DistributionsView{Items: dist, Count: len(dist)}
	}
	return v, nil
}

// History returns the balance and full history for the transactions page.
func (s *DashboardService) History(ctx context.Context, u *domain.User) (float64, []domain.Transaction, error) {
	var bal float64
	var txs []domain.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bal, err = s.Fund.Balance(gctx, u)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.Fund.Transactions(gctx, u)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}
	return bal, txs, nil
}
