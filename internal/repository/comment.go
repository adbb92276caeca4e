package repository

import (
	"context"
	"errors"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create appends comment to its post. The post is checked inside the same
// transaction so a concurrent delete cannot leave an orphan. On success the
// comment's Author is populated with the public projection.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", comment.PostID)
			}
			return err
		}
		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return err
		}
		return tx.Select(models.PublicUserColumns).First(&comment.Author, comment.AuthorID).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, comment.PostID)
	}
	return err
}

// ListByPost returns comments in append order. A missing post is NotFound
// rather than an empty list.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	if err := r.db.WithContext(ctx).Select("id").First(&models.Post{}, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}

	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Preload("Author", selectPublicUser).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}
