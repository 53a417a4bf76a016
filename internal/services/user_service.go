package services

import (
	"context"
	"errors"
	"fmt"

	"andonation/internal/domain"
	"andonation/internal/fund"
	"andonation/internal/repos"
	"andonation/internal/validate"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidRole = errors.New("unknown role")

type UserService struct {
	Users *repos.UserRepo
	Fund  fund.Client
}

func NewUserService(users *repos.UserRepo, f fund.Client) *UserService {
	return &UserService{Users: users, Fund: f}
}

func (s *UserService) List() ([]domain.User, error) { return s.Users.List() }

// AddRole grants a role by name; unknown names yield ErrInvalidRole.
func (s *UserService) AddRole(userID, role string) (domain.Role, error) {
	r, ok := validate.Role(role)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if _, err := s.Users.ByID(userID); err != nil {
		return "", err
	}
	return r, s.Users.AddRole(userID, r)
}

func (s *UserService) Delete(userID string) error { return s.Users.DeleteUserCascade(userID) }

// Distributions are the ledger entries a distributor initiated.
func (s *UserService) Distributions(ctx context.Context, u *domain.User) ([]domain.Transaction, error) {
	if !u.Can(domain.Distribute) {
		return nil, nil
	}
	return s.Fund.UserTransactions(ctx, u)
}

type ProvisionInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Roles     []string
}

// Provision creates a local account outside the federated flow. Existing
// accounts get the extra roles and, if given, the new password.
func (s *UserService) Provision(ctx context.Context, in ProvisionInput) (*domain.User, error) {
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, fmt.Errorf("invalid email %q", in.Email)
	}
	set := domain.NewRoleSet(domain.RoleMember)
	for _, name := range in.Roles {
		r, ok := validate.Role(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, name)
		}
		set = set.Add(r)
	}
	var hash string
	if in.Password != "" {
		if !validate.Password(in.Password) {
			return nil, errors.New("password must be 8-64 chars with upper, lower, digit and symbol")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	u, err := s.Users.ByEmail(email)
	switch {
	case err == nil:
		for _, r := range set.Roles() {
			if err := s.Users.AddRole(u.ID, r); err != nil {
				return nil, err
			}
		}
		if hash != "" {
			if err := s.Users.SetPassword(u.ID, hash); err != nil {
				return nil, err
			}
		}
		if err := ensureAccount(ctx, s.Fund, s.Users, u); err != nil {
			return nil, err
		}
		return s.Users.ByID(u.ID)
	case !errors.Is(err, repos.ErrNotFound):
		return nil, err
	}

	first, _ := validate.Name(in.FirstName)
	last, _ := validate.Name(in.LastName)
	u = &domain.User{Email: email, FirstName: first, LastName: last, Hash: hash, Roles: set}
	if err := openAccount(ctx, s.Fund, u); err != nil {
		return nil, err
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}
