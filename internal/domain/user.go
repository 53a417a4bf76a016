package domain

import "strings"

type User struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Image     string `db:"image"`
	Provider  string `db:"provider"`
	UID       string `db:"uid"`
	AccountID string `db:"account_id"`
	Hash      string `db:"password_hash"`
	CreatedAt string `db:"created_at"`

	Roles  RoleSet  `db:"-"`
	Errors []string `db:"-"` // validation failures of an unsaved candidate
}

// Persisted reports whether the user has been stored and carries a durable id.
func (u *User) Persisted() bool { return u != nil && u.ID != "" }

func (u *User) Valid() bool { return u != nil && len(u.Errors) == 0 }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName falls back to the email when no name is known.
func (u *User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Email
}

func (u *User) HasRole(r Role) bool { return u != nil && u.Roles.Has(r) }

func (u *User) Can(c Capability) bool { return u != nil && u.Roles.Can(c) }
