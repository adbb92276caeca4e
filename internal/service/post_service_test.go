package service

import (
	"context"
	"strings"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePostValidation(t *testing.T) {
	repo, posts := memoryPosts()
	svc := NewPostService(repo)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreatePostInput
		message string
	}{
		{"empty", CreatePostInput{AuthorID: 1}, "Content or image is required"},
		{"whitespace only", CreatePostInput{AuthorID: 1, Content: "   ", Image: " "}, "Content or image is required"},
		{"too long", CreatePostInput{AuthorID: 1, Content: strings.Repeat("a", 5001)}, "Content too long (max 5000 characters)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.in)
			assertAppError(t, err, models.CodeValidation)
			assert.Equal(t, tt.message, err.Error())
		})
	}
	assert.Empty(t, posts)
}

func TestPostService_CreatePost(t *testing.T) {
	repo, _ := memoryPosts()
	svc := NewPostService(repo)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Content: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, uint(1), post.Author.ID)
	assert.Empty(t, post.LikedBy)
	assert.Empty(t, post.Comments)

	imageOnly, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Image: "/uploads/image-1.png"})
	require.NoError(t, err)
	assert.Equal(t, "", imageOnly.Content)
	assert.Equal(t, "/uploads/image-1.png", imageOnly.Image)
}

func TestPostService_LikeScenario(t *testing.T) {
	const alice, bob = uint(1), uint(2)
	repo, _ := memoryPosts()
	svc := NewPostService(repo)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: alice, Content: "hi"})
	require.NoError(t, err)

	res, err := svc.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikesCount)
	assert.Equal(t, "Post liked", LikeMessage(res))

	res, err = svc.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), res.LikesCount)
	assert.Equal(t, "Post unliked", LikeMessage(res))

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, got.LikedByUser(bob))

	_, err = svc.ToggleLike(ctx, bob, 404)
	assertAppError(t, err, models.CodeNotFound)
}

func TestPostService_DeletePost(t *testing.T) {
	repo, posts := memoryPosts()
	svc := NewPostService(repo)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Content: "mine"})
	require.NoError(t, err)

	err = svc.DeletePost(ctx, 2, post.ID)
	assertAppError(t, err, models.CodeForbidden)
	assert.Contains(t, posts, post.ID)

	require.NoError(t, svc.DeletePost(ctx, 1, post.ID))
	_, err = svc.GetPost(ctx, post.ID)
	assertAppError(t, err, models.CodeNotFound)

	err = svc.DeletePost(ctx, 1, post.ID)
	assertAppError(t, err, models.CodeNotFound)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, 5, 1, 5},
		{2, 100, 2, 50},
		{4, 50, 4, 50},
	}
	for _, tt := range tests {
		page, limit := NormalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestPostService_ListPostsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &postRepoStub{
		listFn: func(_ context.Context, limit, offset int) ([]*models.Post, int64, error) {
			gotLimit, gotOffset = limit, offset
			return []*models.Post{{ID: 3}}, 21, nil
		},
	}
	svc := NewPostService(repo)

	feed, err := svc.ListPosts(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, 20, gotOffset)
	assert.Equal(t, models.Pagination{Page: 3, Limit: 10, Total: 21, Pages: 3}, feed.Pagination)
	assert.Len(t, feed.Posts, 1)
}
