package service

import (
	"context"
	"testing"

	"quill/internal/cache"
	"quill/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Swaps the package-global cache client, so no t.Parallel here.
func TestPostService_ListPublished_CachesOnlyDefaultFirstPage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	all := make([]*models.Post, 10)
	for i := range all {
		all[i] = &models.Post{ID: uint(i + 1), Title: "post", Published: true}
	}

	fetches := 0
	repo := noopPostRepo()
	repo.listPublishedFn = func(_ context.Context, limit, _ int) ([]*models.Post, error) {
		fetches++
		if limit > len(all) {
			limit = len(all)
		}
		return all[:limit], nil
	}
	svc := NewPostService(repo, noopUserRepo())
	ctx := context.Background()

	// A shorter page must not end up under the default page's key.
	short, err := svc.ListPublished(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, short, 2)

	full, err := svc.ListPublished(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, full, 10, "default page must not be served the short page's cache entry")
	assert.Equal(t, 2, fetches)

	// The default page is cached and served on repeat.
	again, err := svc.ListPublished(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, again, 10)
	assert.Equal(t, 2, fetches)

	// Offset pages bypass the cache.
	_, err = svc.ListPublished(ctx, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, fetches)
}
