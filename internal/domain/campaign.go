package domain

type Campaign struct {
	ID          string  `db:"id"`
	UserID      string  `db:"user_id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Amount      float64 `db:"amount"`   // goal
	Deadline    string  `db:"deadline"` // YYYY-MM-DD
	CreatedAt   string  `db:"created_at"`
	OwnerName   string  `db:"owner_name"`
}
