package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"andonation/internal/domain"
	"andonation/internal/repos"
	"andonation/internal/services"
)

func TestAddRole(t *testing.T) {
	users, _ := memUsers(t)
	u := &domain.User{Email: "a@andela.co", Roles: domain.NewRoleSet(domain.RoleMember)}
	require.NoError(t, users.Create(u))
	svc := services.NewUserService(users, &fakeFund{})

	r, err := svc.AddRole(u.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, r)

	_, err = svc.AddRole(u.ID, "owner")
	assert.ErrorIs(t, err, services.ErrInvalidRole)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Admin, Member", list[0].Roles.String())
}

func TestDistributionsRequireRole(t *testing.T) {
	users, _ := memUsers(t)
	ledger := &fakeFund{dist: txs(3)}
	svc := services.NewUserService(users, ledger)

	none, err := svc.Distributions(context.Background(), &domain.User{Roles: domain.NewRoleSet(domain.RoleMember)})
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := svc.Distributions(context.Background(), &domain.User{Roles: domain.NewRoleSet(domain.RoleDistributor)})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestProvision(t *testing.T) {
	users, _ := memUsers(t)
	ledger := &fakeFund{accountID: "acc-1"}
	svc := services.NewUserService(users, ledger)
	ctx := context.Background()

	u, err := svc.Provision(ctx, services.ProvisionInput{Email: "admin@andonation.test", FirstName: "Ada", Password: "Passw0rd!", Roles: []string{"admin"}})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", u.AccountID)
	assert.Equal(t, "Admin, Member", u.Roles.String())
	assert.NotEmpty(t, u.Hash)

	again, err := svc.Provision(ctx, services.ProvisionInput{Email: "admin@andonation.test", Roles: []string{"distributor"}})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Admin, Distributor, Member", again.Roles.String())
	assert.Equal(t, 1, ledger.created)

	_, err = svc.Provision(ctx, services.ProvisionInput{Email: "x@andonation.test", Password: "weak"})
	assert.Error(t, err)
	_, err = svc.Provision(ctx, services.ProvisionInput{Email: "bad"})
	assert.Error(t, err)
}

func TestProvisionLedgerFailureStoresNothing(t *testing.T) {
	users, _ := memUsers(t)
	ledger := &fakeFund{accountID: "acc-2", err: errors.New("ledger down")}
	svc := services.NewUserService(users, ledger)
	in := services.ProvisionInput{Email: "ada@andonation.test", FirstName: "Ada"}

	_, err := svc.Provision(context.Background(), in)
	require.Error(t, err)
	_, err = users.ByEmail("ada@andonation.test")
	assert.ErrorIs(t, err, repos.ErrNotFound)

	ledger.err = nil
	u, err := svc.Provision(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "acc-2", u.AccountID)
}

func TestCampaignValidation(t *testing.T) {
	users, campaigns := memUsers(t)
	owner := &domain.User{Email: "o@andela.co"}
	require.NoError(t, users.Create(owner))
	svc := services.NewCampaignService(campaigns)
	svc.Now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }

	_, err := svc.Create(owner, services.CampaignInput{Title: "", Amount: "-1", Deadline: "2026-01-01"})
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "title")
	assert.Contains(t, fe, "amount")
	assert.Contains(t, fe, "deadline")

	c, err := svc.Create(owner, services.CampaignInput{Title: "Food for the Poor", Amount: "6000", Deadline: "2026-10-18"})
	require.NoError(t, err)
	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food for the Poor", got.Title)

	_, err = svc.Create(&domain.User{}, services.CampaignInput{Title: "x", Amount: "1", Deadline: "2026-10-18"})
	assert.Error(t, err)
}
