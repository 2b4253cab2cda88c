package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-api/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestExampleLifecycle(t *testing.T) {
	svc := NewExampleService(newMemExampleRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", ExampleInput{Description: strPtr("no title")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	created, err := svc.Create(ctx, "user-1", ExampleInput{Title: strPtr(" First "), Description: strPtr("demo")})
	require.NoError(t, err)
	assert.Equal(t, "First", created.Title)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "user-1", *created.CreatedBy)

	updated, err := svc.Update(ctx, created.ID, ExampleInput{Description: strPtr("changed")})
	require.NoError(t, err)
	assert.Equal(t, "First", updated.Title)
	assert.Equal(t, "changed", updated.Description)

	_, err = svc.Update(ctx, created.ID, ExampleInput{Title: strPtr("")})
	require.ErrorAs(t, err, &verr)

	list, err := svc.List(ctx, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)
}
