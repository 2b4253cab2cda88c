package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-api/internal/domain"
)

func seedUsers(t *testing.T, repo *memUserRepo, n int) []*domain.User {
	t.Helper()
	out := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		u := &domain.User{Name: "User", Email: strings.Repeat("u", i+1) + "@example.com", Role: domain.RoleUser, IsActive: true}
		require.NoError(t, repo.Create(context.Background(), u))
		out = append(out, u)
	}
	return out
}

func TestUpdateProfile(t *testing.T) {
	repo := newMemUserRepo()
	user := seedUsers(t, repo, 1)[0]
	svc := NewUserService(repo)
	ctx := context.Background()

	name, phone, bio := "  Grace ", "+1 (555) 010-9999", "Hello"
	updated, err := svc.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Name: &name, Phone: &phone, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.Name)
	assert.Equal(t, phone, updated.Phone)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Bio)

	empty := " "
	_, err = svc.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Name: &empty})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	long := strings.Repeat("x", 501)
	_, err = svc.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Bio: &long})
	require.ErrorAs(t, err, &verr)

	bad := "call me"
	_, err = svc.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Phone: &bad})
	require.ErrorAs(t, err, &verr)

	_, err = svc.UpdateProfile(ctx, "missing", domain.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsersPagination(t *testing.T) {
	repo := newMemUserRepo()
	seedUsers(t, repo, 12)
	svc := NewUserService(repo)

	users, page, err := svc.ListUsers(context.Background(), PageRequest{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, users, 5)
	assert.Equal(t, Page{Page: 2, Limit: 5, Total: 12, Pages: 3}, page)

	users, page, err = svc.ListUsers(context.Background(), PageRequest{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 2, page.Pages)
}

func TestSetActive(t *testing.T) {
	repo := newMemUserRepo()
	users := seedUsers(t, repo, 2)
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.SetActive(ctx, users[0].ID, users[0].ID, false)
	assert.ErrorIs(t, err, domain.ErrSelfDeactivation)

	updated, err := svc.SetActive(ctx, users[0].ID, users[1].ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.SetActive(ctx, users[0].ID, "missing", true)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
