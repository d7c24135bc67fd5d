package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix    = "post:%d"
	PublishedListKey = "posts:published:first"
)

const (
	PostTTL          = 5 * time.Minute
	PublishedListTTL = time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, PublishedListKey)
}

func InvalidatePublishedList(ctx context.Context) {
	Invalidate(ctx, PublishedListKey)
}
