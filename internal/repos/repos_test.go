package repos_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"andonation/internal/domain"
	"andonation/internal/repos"
)

func newRepos(t *testing.T) (*repos.UserRepo, *repos.CampaignRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewUserRepo(db), repos.NewCampaignRepo(db)
}

func TestUserCreateAndLookup(t *testing.T) {
	users, _ := newRepos(t)

	u := &domain.User{
		Email: "christopher@andela.co", FirstName: "Christopher", LastName: "Jones",
		Provider: "google_oauth2", UID: "123545", Roles: domain.NewRoleSet(domain.RoleMember),
	}
	require.NoError(t, users.Create(u))
	require.True(t, u.Persisted())

	byEmail, err := users.ByEmail("CHRISTOPHER@andela.co")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "Member", byEmail.Roles.String())

	byIdentity, err := users.ByIdentity("google_oauth2", "123545")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byIdentity.ID)

	_, err = users.ByID("missing")
	assert.ErrorIs(t, err, repos.ErrNotFound)

	dup := &domain.User{Email: "christopher@andela.co"}
	assert.Error(t, users.Create(dup), "email must be unique")
}

func TestRolesAreReadPerLookup(t *testing.T) {
	users, _ := newRepos(t)
	u := &domain.User{Email: "a@andela.co", Roles: domain.NewRoleSet(domain.RoleMember)}
	require.NoError(t, users.Create(u))
	require.NoError(t, users.BindSession("sid-1", u.ID))

	before, err := users.SessionUser("sid-1")
	require.NoError(t, err)
	assert.False(t, before.HasRole(domain.RoleAdmin))

	require.NoError(t, users.AddRole(u.ID, domain.RoleAdmin))
	require.NoError(t, users.AddRole(u.ID, domain.RoleAdmin))

	after, err := users.SessionUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Admin, Member", after.Roles.String())

	require.NoError(t, users.RemoveRole(u.ID, domain.RoleAdmin))
	after, err = users.SessionUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Member", after.Roles.String())
}

func TestSessionUnbind(t *testing.T) {
	users, _ := newRepos(t)
	u := &domain.User{Email: "b@andela.co"}
	require.NoError(t, users.Create(u))
	require.NoError(t, users.BindSession("sid-2", u.ID))
	require.NoError(t, users.UnbindSession("sid-2"))

	_, err := users.SessionUser("sid-2")
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestListUsersWithRoles(t *testing.T) {
	users, _ := newRepos(t)
	for _, n := range [][2]string{{"Frankie", "Nnaemeka"}, {"Chiemeka", "Alim"}, {"Fiyin", "Foluwa"}} {
		u := &domain.User{Email: n[0] + "@andela.co", FirstName: n[0], LastName: n[1], Roles: domain.NewRoleSet(domain.RoleMember)}
		require.NoError(t, users.Create(u))
	}
	chiemeka, err := users.ByEmail("Chiemeka@andela.co")
	require.NoError(t, err)
	require.NoError(t, users.AddRole(chiemeka.ID, domain.RoleAdmin))

	list, err := users.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Chiemeka Alim", list[0].FullName())
	assert.Equal(t, "Admin, Member", list[0].Roles.String())
	assert.Equal(t, "Member", list[2].Roles.String())
}

func TestCampaignsNewestFirstAndActiveOnly(t *testing.T) {
	users, campaigns := newRepos(t)
	owner := &domain.User{Email: "owner@andela.co", FirstName: "Ada", LastName: "Obi"}
	require.NoError(t, users.Create(owner))

	for i := 0; i < 3; i++ {
		require.NoError(t, campaigns.Create(&domain.Campaign{
			UserID: owner.ID, Title: fmt.Sprintf("Campaign %d", i), Amount: 6000, Deadline: "2026-10-18",
		}))
	}
	require.NoError(t, campaigns.Create(&domain.Campaign{
		UserID: owner.ID, Title: "Expired", Amount: 100, Deadline: "2026-01-01",
	}))

	list, err := campaigns.ActiveByUser(owner.ID, "2026-10-16")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Campaign 2", list[0].Title)
	assert.Equal(t, "Ada Obi", list[0].OwnerName)
	assert.Equal(t, float64(6000), list[0].Amount)

	all, err := campaigns.ListActive("2026-10-16", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := campaigns.Get(list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Campaign 1", got.Title)

	_, err = campaigns.Get("nope")
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestDeleteUserCascade(t *testing.T) {
	users, campaigns := newRepos(t)
	u := &domain.User{Email: "gone@andela.co", Roles: domain.NewRoleSet(domain.RoleMember)}
	require.NoError(t, users.Create(u))
	require.NoError(t, users.BindSession("sid-x", u.ID))
	require.NoError(t, campaigns.Create(&domain.Campaign{UserID: u.ID, Title: "t", Amount: 1, Deadline: "2099-01-01"}))

	require.NoError(t, users.DeleteUserCascade(u.ID))
	_, err := users.ByID(u.ID)
	assert.ErrorIs(t, err, repos.ErrNotFound)
	assert.ErrorIs(t, users.DeleteUserCascade(u.ID), repos.ErrNotFound)
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "andonation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	// Hold two connections at once so the pool cannot hand back the same one.
	for _, name := range []string{"first", "second"} {
		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()
		var on int
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&on))
		assert.Equal(t, 1, on, name)
	}

	campaigns := repos.NewCampaignRepo(db)
	err = campaigns.Create(&domain.Campaign{UserID: "no-such-user", Title: "t", Amount: 1, Deadline: "2099-01-01"})
	assert.Error(t, err, "campaign owner must exist")
}
