package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	PostKeyPrefix    = "post:%d"
	postsListVersion = "posts:list:version"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 10 * time.Minute
	ListTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostsListKey returns the key for one feed page. Keys embed a version that
// InvalidatePostsList bumps, so stale pages are never read again.
func PostsListKey(ctx context.Context, page, limit int) string {
	version := int64(0)
	if client != nil {
		if v, err := client.Get(ctx, postsListVersion).Int64(); err == nil {
			version = v
		}
	}
	return fmt.Sprintf("posts:list:v%d:p%d:l%d", version, page, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops the post entry and every cached feed page.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	InvalidatePostsList(ctx)
}

// InvalidatePosts drops each post entry and bumps the feed version once.
func InvalidatePosts(ctx context.Context, postIDs ...uint) {
	if client == nil {
		return
	}
	if len(postIDs) > 0 {
		keys := make([]string, 0, len(postIDs))
		for _, id := range postIDs {
			keys = append(keys, PostKey(id))
		}
		client.Del(ctx, keys...)
	}
	InvalidatePostsList(ctx)
}

func InvalidatePostsList(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, postsListVersion)
	}
}
