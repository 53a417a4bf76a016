package services

import (
	"errors"
	"time"

	"andonation/internal/domain"
	"andonation/internal/repos"
	"andonation/internal/validate"
)

type CampaignInput struct {
	Title       string
	Description string
	Amount      string
	Deadline    string
}

// FieldErrors maps form fields to messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string { return "invalid campaign" }

type CampaignService struct {
	Campaigns *repos.CampaignRepo
	Now       func() time.Time
}

func NewCampaignService(c *repos.CampaignRepo) *CampaignService {
	return &CampaignService{Campaigns: c, Now: time.Now}
}

func (s *CampaignService) today() string { return s.Now().Format(validate.DateLayout) }

func (s *CampaignService) Create(owner *domain.User, in CampaignInput) (*domain.Campaign, error) {
	if !owner.Persisted() {
		return nil, errors.New("campaign owner must be signed in")
	}
	errs := FieldErrors{}
	title, ok := validate.Title(in.Title)
	if !ok {
		errs["title"] = "Title is required (max 100 characters)"
	}
	desc, ok := validate.Description(in.Description)
	if !ok {
		errs["description"] = "Description is too long"
	}
	amount, ok := validate.Amount(in.Amount)
	if !ok {
		errs["amount"] = "Goal must be a positive amount"
	}
	deadline, ok := validate.Deadline(in.Deadline, s.Now())
	if !ok {
		errs["deadline"] = "Deadline must be a date (YYYY-MM-DD) that is not in the past"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	c := &domain.Campaign{UserID: owner.ID, Title: title, Description: desc, Amount: amount, Deadline: deadline, OwnerName: owner.FullName()}
	if err := s.Campaigns.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) Get(id string) (*domain.Campaign, error) { return s.Campaigns.Get(id) }

func (s *CampaignService) Active(userID string) ([]domain.Campaign, error) {
	return s.Campaigns.ActiveByUser(userID, s.today())
}

func (s *CampaignService) Recent(limit int) ([]domain.Campaign, error) {
	return s.Campaigns.ListActive(s.today(), limit)
}
