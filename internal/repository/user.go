// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"murmur/internal/cache"
	"murmur/internal/database"
	"murmur/internal/middleware"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// SearchLimit caps user search results.
const SearchLimit = 10

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts user. A username or email collision yields a validation
// error, including when a concurrent registration wins the race.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewValidationError("User already exists")
		}
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("username", "bio", "avatar").
		Updates(user).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewValidationError("Username already taken")
		}
		return err
	}
	cache.InvalidateUser(ctx, user.ID)
	r.invalidateEmbeddedPosts(ctx, user.ID)
	return nil
}

// invalidateEmbeddedPosts drops cached posts and feed pages that carry the
// user's public projection, as author or as commenter.
func (r *userRepository) invalidateEmbeddedPosts(ctx context.Context, userID uint) {
	var authored, commented []uint
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Post{}).Where("author_id = ?", userID).Pluck("id", &authored).Error; err != nil {
		middleware.Logger.WarnContext(ctx, "post cache invalidation skipped", "user_id", userID, "error", err.Error())
	}
	if err := db.Model(&models.Comment{}).Where("author_id = ?", userID).Distinct().Pluck("post_id", &commented).Error; err != nil {
		middleware.Logger.WarnContext(ctx, "post cache invalidation skipped", "user_id", userID, "error", err.Error())
	}
	cache.InvalidatePosts(ctx, append(authored, commented...)...)
}

// Search matches query as a case-insensitive substring of username or email.
// Results carry the public projection only.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	users := []models.User{}
	err := r.db.WithContext(ctx).
		Select(models.PublicUserColumns).
		Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
