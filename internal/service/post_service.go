package service

import (
	"context"
	"strings"

	"murmur/internal/cache"
	"murmur/internal/models"
	"murmur/internal/observability"
	"murmur/internal/repository"
	"murmur/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	AuthorID uint
	Content  string
	Image    string
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	image := strings.TrimSpace(in.Image)

	if content == "" && image == "" {
		return nil, models.NewValidationError("Content or image is required")
	}
	if !validation.MaxRunes(content, validation.MaxPostLength) {
		return nil, models.NewValidationError("Content too long (max 5000 characters)")
	}

	post := &models.Post{
		AuthorID: in.AuthorID,
		Content:  content,
		Image:    image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// NormalizePage applies the feed defaults: page 1, limit 10, limit at most 50.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// ListPosts returns one page of the global feed, newest first.
func (s *PostService) ListPosts(ctx context.Context, page, limit int) (*models.Feed, error) {
	page, limit = NormalizePage(page, limit)

	var feed models.Feed
	err := cache.Aside(ctx, cache.PostsListKey(ctx, page, limit), &feed, cache.ListTTL, func() error {
		posts, total, err := s.postRepo.List(ctx, limit, (page-1)*limit)
		if err != nil {
			return err
		}
		feed = models.Feed{
			Posts:      posts,
			Pagination: models.NewPagination(page, limit, total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// DeletePost removes postID when actorID authored it.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return models.NewForbiddenError("Not authorized to delete this post")
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) ToggleLike(ctx context.Context, actorID, postID uint) (*models.LikeResult, error) {
	ctx, span := observability.StartSpan(ctx, "PostService.ToggleLike",
		attribute.Int64("actor.id", int64(actorID)),
		attribute.Int64("post.id", int64(postID)),
	)
	res, err := s.postRepo.ToggleLike(ctx, actorID, postID)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	observability.RelationshipToggles.WithLabelValues("like", observability.ToggleState(res.Liked)).Inc()
	return res, nil
}

// LikeMessage is the response message for a like toggle result.
func LikeMessage(res *models.LikeResult) string {
	if res.Liked {
		return "Post liked"
	}
	return "Post unliked"
}
