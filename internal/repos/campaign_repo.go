package repos

import (
	"database/sql"
	"errors"

	"andonation/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CampaignRepo struct{ db *sqlx.DB }

func NewCampaignRepo(db *sqlx.DB) *CampaignRepo { return &CampaignRepo{db: db} }

const campaignCols = `c.id, c.user_id, c.title, c.description, c.amount, c.deadline,
  COALESCE(c.created_at,'') AS created_at,
  TRIM(COALESCE(u.first_name,'') || ' ' || COALESCE(u.last_name,'')) AS owner_name`

// Create inserts a campaign and assigns c.ID and c.CreatedAt.
func (r *CampaignRepo) Create(c *domain.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := r.db.Exec(`
	  INSERT INTO campaigns(id, user_id, title, description, amount, deadline, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.ID, c.UserID, c.Title, c.Description, c.Amount, c.Deadline); err != nil {
		return err
	}
	return r.db.Get(&c.CreatedAt, `SELECT created_at FROM campaigns WHERE id=?`, c.ID)
}

func (r *CampaignRepo) Get(id string) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.db.Get(&c, `SELECT `+campaignCols+` FROM campaigns c JOIN users u ON u.id=c.user_id WHERE c.id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ActiveByUser returns the user's campaigns whose deadline is on or after
// today (YYYY-MM-DD), newest first.
func (r *CampaignRepo) ActiveByUser(userID, today string) ([]domain.Campaign, error) {
	var out []domain.Campaign
	err := r.db.Select(&out, `
		SELECT `+campaignCols+`
		FROM campaigns c
		JOIN users u ON u.id = c.user_id
		WHERE c.user_id = ? AND c.deadline >= ?
		ORDER BY datetime(c.created_at) DESC, c.rowid DESC
	`, userID, today)
	return out, err
}

// ListActive returns the latest active campaigns across all users.
func (r *CampaignRepo) ListActive(today string, limit int) ([]domain.Campaign, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.Campaign
	err := r.db.Select(&out, `
		SELECT `+campaignCols+`
		FROM campaigns c
		JOIN users u ON u.id = c.user_id
		WHERE c.deadline >= ?
		ORDER BY datetime(c.created_at) DESC, c.rowid DESC
		LIMIT ?
	`, today, limit)
	return out, err
}
