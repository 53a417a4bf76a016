package domain

import "strings"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDistributor Role = "distributor"
	RoleMember      Role = "member"
)

// AllRoles lists the vocabulary in display precedence.
var AllRoles = []Role{RoleAdmin, RoleDistributor, RoleMember}

func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Title returns the role name with its first letter upper-cased ("Admin").
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

func (r Role) bit() RoleSet {
	for i, x := range AllRoles {
		if x == r {
			return 1 << uint(i)
		}
	}
	return 0
}

// RoleSet is a bitmask over AllRoles.
type RoleSet uint8

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	b := r.bit()
	return b != 0 && s&b != 0
}

func (s RoleSet) Add(r Role) RoleSet    { return s | r.bit() }
func (s RoleSet) Remove(r Role) RoleSet { return s &^ r.bit() }
func (s RoleSet) Empty() bool           { return s == 0 }

// Roles returns the members of the set in precedence order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// String renders e.g. "Admin, Member".
func (s RoleSet) String() string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Title()
	}
	return strings.Join(names, ", ")
}

type Capability int

const (
	ManageUsers Capability = iota
	Distribute
)

func (s RoleSet) Can(c Capability) bool {
	switch c {
	case ManageUsers:
		return s.Has(RoleAdmin)
	case Distribute:
		return s.Has(RoleDistributor)
	}
	return false
}
