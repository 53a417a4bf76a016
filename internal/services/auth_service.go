package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"andonation/internal/auth"
	"andonation/internal/domain"
	"andonation/internal/fund"
	"andonation/internal/repos"
	"andonation/internal/validate"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCreds = errors.New("invalid email or password")

const defaultFailureReason = "account cannot be saved"

// Resolver maps a provider payload to a local user. It may return an unsaved
// candidate carrying validation errors; an error return is fatal.
type Resolver func(ctx context.Context, p *auth.Payload) (*domain.User, error)

type AuthService struct {
	Users          *repos.UserRepo
	Fund           fund.Client
	AllowedDomains []string
	// Resolve overrides FindOrCreateForProvider, mostly for tests.
	Resolve Resolver
}

// Notice kinds carried by flash messages.
const (
	NoticeSuccess = "notice"
	NoticeError   = "error"
)

type CallbackResult struct {
	Candidate  *domain.User
	SignedIn   bool
	Notice     string
	NoticeKind string
	Reason     string
}

func SuccessNotice(provider string) string {
	return fmt.Sprintf("Successfully authenticated from %s account.", provider)
}

func FailureNotice(provider, reason string) string {
	return fmt.Sprintf("Could not authenticate you from %s because \"%s\".", provider, reason)
}

// CompleteFederated finishes a provider callback: it resolves the candidate
// user and binds the session only when the candidate is persisted and valid.
func (s *AuthService) CompleteFederated(ctx context.Context, sid, provider string, p *auth.Payload) (CallbackResult, error) {
	resolve := s.Resolve
	if resolve == nil {
		resolve = s.FindOrCreateForProvider
	}
	u, err := resolve(ctx, p)
	if err != nil {
		return CallbackResult{}, err
	}
	res := CallbackResult{Candidate: u}
	if !u.Persisted() || !u.Valid() {
		return s.Fail(provider, failureReason(u), u), nil
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return CallbackResult{}, err
	}
	res.SignedIn = true
	res.Notice = SuccessNotice(provider)
	res.NoticeKind = NoticeSuccess
	return res, nil
}

// Fail builds the unauthenticated outcome for a given reason.
func (s *AuthService) Fail(provider, reason string, candidate *domain.User) CallbackResult {
	return CallbackResult{
		Candidate:  candidate,
		Notice:     FailureNotice(provider, reason),
		NoticeKind: NoticeError,
		Reason:     reason,
	}
}

func failureReason(u *domain.User) string {
	if u == nil || len(u.Errors) == 0 {
		return defaultFailureReason
	}
	return strings.Join(u.Errors, ", ")
}

// FindOrCreateForProvider looks the user up by identity, then by email, and
// otherwise provisions a member with a fresh ledger account.
func (s *AuthService) FindOrCreateForProvider(ctx context.Context, p *auth.Payload) (*domain.User, error) {
	if p == nil {
		return &domain.User{Errors: []string{"missing identity"}}, nil
	}
	if p.UID != "" {
		u, err := s.Users.ByIdentity(p.Provider, p.UID)
		if err == nil {
			if err := ensureAccount(ctx, s.Fund, s.Users, u); err != nil {
				return nil, err
			}
			return u, nil
		}
		if !errors.Is(err, repos.ErrNotFound) {
			return nil, err
		}
	}
	if p.Email != "" {
		u, err := s.Users.ByEmail(p.Email)
		if err == nil {
			if err := s.Users.LinkIdentity(u.ID, p.Provider, p.UID, p.Image); err != nil {
				return nil, err
			}
			u.Provider, u.UID = p.Provider, p.UID
			if err := ensureAccount(ctx, s.Fund, s.Users, u); err != nil {
				return nil, err
			}
			return u, nil
		}
		if !errors.Is(err, repos.ErrNotFound) {
			return nil, err
		}
	}

	u := s.candidate(p)
	if !u.Valid() {
		return u, nil
	}
	if err := openAccount(ctx, s.Fund, u); err != nil {
		return nil, err
	}
	if err := s.Users.Create(u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthService) candidate(p *auth.Payload) *domain.User {
	u := &domain.User{
		Email:    strings.TrimSpace(p.Email),
		Provider: p.Provider,
		UID:      p.UID,
		Image:    p.Image,
		Roles:    domain.NewRoleSet(domain.RoleMember),
	}
	var errs []string
	if _, ok := validate.Email(u.Email); !ok {
		errs = append(errs, "email is invalid")
	} else if !validate.EmailDomain(u.Email, s.AllowedDomains) {
		errs = append(errs, "email domain is not allowed")
	}
	first, ok1 := validate.Name(p.FirstName)
	last, ok2 := validate.Name(p.LastName)
	if !ok1 || !ok2 {
		errs = append(errs, "name is too long")
	}
	u.FirstName, u.LastName = first, last
	u.Errors = errs
	return u
}

// Login verifies a provisioned local account.
func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if u.Hash == "" || bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
