package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"andonation/internal/domain"
	"andonation/internal/repos"
)

// fakeFund is an in-memory ledger double.
type fakeFund struct {
	mu        sync.Mutex
	balance   float64
	txs       []domain.Transaction
	dist      []domain.Transaction
	err       error
	created   int
	balCalls  int
	accountID string
	refs      []string // user ids passed to CreateAccount
}

func (f *fakeFund) Balance(context.Context, *domain.User) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balCalls++
	return f.balance, f.err
}

func (f *fakeFund) Transactions(context.Context, *domain.User) ([]domain.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeFund) UserTransactions(context.Context, *domain.User) ([]domain.Transaction, error) {
	return f.dist, f.err
}

func (f *fakeFund) CreateAccount(_ context.Context, u *domain.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	f.refs = append(f.refs, u.ID)
	if f.err != nil {
		return "", f.err
	}
	return f.accountID, nil
}

func txs(n int) []domain.Transaction {
	out := make([]domain.Transaction, n)
	for i := range out {
		out[i] = domain.Transaction{ID: fmt.Sprintf("t-%d", i), Amount: 10, Type: "credit"}
	}
	return out
}

func memUsers(t *testing.T) (*repos.UserRepo, *repos.CampaignRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewUserRepo(db), repos.NewCampaignRepo(db)
}
