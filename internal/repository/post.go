package repository

import (
	"context"
	"errors"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	if err == nil {
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := withPostDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return err
		}
		post.Hydrate()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns one page of the feed, newest first, and the total post count.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []*models.Post{}
	err := withPostDetails(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	hydrateAll(posts)
	return posts, total, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := withPostDetails(r.db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	hydrateAll(posts)
	return posts, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// Delete removes the post with its comments and likes atomically.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err == nil {
		cache.InvalidatePost(ctx, id)
	}
	return err
}

// ToggleLike flips userID's membership in the post's like set in one
// transaction and returns the resulting state and count.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	result := &models.LikeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return err
		}

		del := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected == 0 {
			like := models.Like{UserID: userID, PostID: postID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			result.Liked = true
		}

		return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&result.LikesCount).Error
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	return result, nil
}

// withPostDetails preloads the author, like set and comments (append order)
// with their authors, all using the public user projection.
func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author", selectPublicUser).
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("likes.id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Comments.Author", selectPublicUser)
}

func selectPublicUser(db *gorm.DB) *gorm.DB {
	return db.Select(models.PublicUserColumns)
}

func hydrateAll(posts []*models.Post) {
	for _, p := range posts {
		p.Hydrate()
	}
}
