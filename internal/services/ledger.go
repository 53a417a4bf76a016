package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"andonation/internal/domain"
	"andonation/internal/fund"
	"andonation/internal/repos"
)

// openAccount asks the ledger for an account before u is stored, so the
// account id goes into the same insert as the user. Assigns u.ID when empty.
func openAccount(ctx context.Context, f fund.Client, u *domain.User) error {
	if f == nil {
		return nil
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	id, err := f.CreateAccount(ctx, u)
	if err != nil {
		return fmt.Errorf("create ledger account: %w", err)
	}
	u.AccountID = id
	return nil
}

// ensureAccount opens the account a stored user is still missing, e.g. one
// created while the ledger was offline.
func ensureAccount(ctx context.Context, f fund.Client, users *repos.UserRepo, u *domain.User) error {
	if f == nil || u.AccountID != "" {
		return nil
	}
	id, err := f.CreateAccount(ctx, u)
	if err != nil {
		return fmt.Errorf("create ledger account: %w", err)
	}
	if id == "" {
		return nil
	}
	if err := users.SetAccountID(u.ID, id); err != nil {
		return err
	}
	u.AccountID = id
	return nil
}
