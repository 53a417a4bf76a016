package repos

import (
	"database/sql"
	"errors"

	"andonation/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `u.id, u.email, u.first_name, u.last_name,
  COALESCE(u.image,'') AS image, COALESCE(u.provider,'') AS provider, COALESCE(u.uid,'') AS uid,
  COALESCE(u.account_id,'') AS account_id, COALESCE(u.password_hash,'') AS password_hash,
  COALESCE(u.created_at,'') AS created_at`

func (r *UserRepo) one(q string, args ...any) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	roles, err := r.Roles(u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	return r.one(`SELECT `+userCols+` FROM users u WHERE LOWER(u.email)=LOWER(?)`, email)
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	return r.one(`SELECT `+userCols+` FROM users u WHERE u.id=?`, id)
}

// ByIdentity finds the user linked to a federated identity.
func (r *UserRepo) ByIdentity(provider, uid string) (*domain.User, error) {
	return r.one(`SELECT `+userCols+` FROM users u WHERE u.provider=? AND u.uid=?`, provider, uid)
}

// Create inserts the user and its roles atomically and assigns u.ID.
func (r *UserRepo) Create(u *domain.User) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := tx.Exec(`
		INSERT INTO users(id,email,first_name,last_name,image,provider,uid,account_id,password_hash)
		VALUES(?,?,?,?,NULLIF(?,''),NULLIF(?,''),NULLIF(?,''),NULLIF(?,''),NULLIF(?,''))
	`, id, u.Email, u.FirstName, u.LastName, u.Image, u.Provider, u.UID, u.AccountID, u.Hash); err != nil {
		return err
	}
	for _, role := range u.Roles.Roles() {
		if _, err := tx.Exec(`INSERT INTO user_roles(user_id,role) VALUES(?,?)`, id, string(role)); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	u.ID = id
	return nil
}

// LinkIdentity attaches a federated identity to an existing account.
func (r *UserRepo) LinkIdentity(userID, provider, uid, image string) error {
	_, err := r.DB.Exec(`UPDATE users SET provider=?, uid=?, image=COALESCE(NULLIF(?,''),image), updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		provider, uid, image, userID)
	return err
}

func (r *UserRepo) SetAccountID(userID, accountID string) error {
	_, err := r.DB.Exec(`UPDATE users SET account_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, accountID, userID)
	return err
}

func (r *UserRepo) SetPassword(userID, hash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, hash, userID)
	return err
}

func (r *UserRepo) Roles(userID string) (domain.RoleSet, error) {
	var names []string
	if err := r.DB.Select(&names, `SELECT role FROM user_roles WHERE user_id=?`, userID); err != nil {
		return 0, err
	}
	var set domain.RoleSet
	for _, n := range names {
		if role, ok := domain.ParseRole(n); ok {
			set = set.Add(role)
		}
	}
	return set, nil
}

// AddRole is idempotent.
func (r *UserRepo) AddRole(userID string, role domain.Role) error {
	_, err := r.DB.Exec(`INSERT INTO user_roles(user_id,role) VALUES(?,?) ON CONFLICT(user_id,role) DO NOTHING`, userID, string(role))
	return err
}

func (r *UserRepo) RemoveRole(userID string, role domain.Role) error {
	_, err := r.DB.Exec(`DELETE FROM user_roles WHERE user_id=? AND role=?`, userID, string(role))
	return err
}

// List returns every user with roles, ordered by name.
func (r *UserRepo) List() ([]domain.User, error) {
	var users []domain.User
	if err := r.DB.Select(&users, `SELECT `+userCols+` FROM users u ORDER BY LOWER(u.first_name), LOWER(u.last_name), LOWER(u.email)`); err != nil {
		return nil, err
	}
	var rows []struct {
		UserID string `db:"user_id"`
		Role   string `db:"role"`
	}
	if err := r.DB.Select(&rows, `SELECT user_id, role FROM user_roles`); err != nil {
		return nil, err
	}
	byUser := make(map[string]domain.RoleSet, len(users))
	for _, row := range rows {
		if role, ok := domain.ParseRole(row.Role); ok {
			byUser[row.UserID] = byUser[row.UserID].Add(role)
		}
	}
	for i := range users {
		users[i].Roles = byUser[users[i].ID]
	}
	return users, nil
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen) 
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

// SessionUser loads the user bound to sid, roles included, so role changes
// show up on the very next request.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	return r.one(`
      SELECT `+userCols+`
      FROM sessions s 
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// DeleteUserCascade removes the user with sessions, roles and campaigns.
func (r *UserRepo) DeleteUserCascade(userID string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM sessions WHERE user_id=?`,
		`DELETE FROM campaigns WHERE user_id=?`,
		`DELETE FROM user_roles WHERE user_id=?`,
	} {
		if _, err := tx.Exec(q, userID); err != nil {
			return err
		}
	}
	res, err := tx.Exec(`DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
