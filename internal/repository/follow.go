package repository

import (
	"context"
	"errors"

	"murmur/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores the directed follow graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followeeID uint) (*models.FollowResult, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle flips the follower -> followee edge in one transaction. The delete
// result decides the branch: a removed row means unfollow, otherwise the row
// is inserted. The follower count is read inside the same transaction.
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID uint) (*models.FollowResult, error) {
	result := &models.FollowResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, followeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", followeeID)
			}
			return err
		}

		del := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected == 0 {
			edge := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
				return err
			}
			result.Following = true
		}

		return tx.Model(&models.Follow{}).
			Where("followee_id = ?", followeeID).
			Count(&result.FollowersCount).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// Followers lists users following userID, oldest edge first.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return r.listEdgeUsers(ctx, "follows.follower_id", "follows.followee_id", userID)
}

// Following lists users userID follows, oldest edge first.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return r.listEdgeUsers(ctx, "follows.followee_id", "follows.follower_id", userID)
}

func (r *followRepository) listEdgeUsers(ctx context.Context, joinCol, whereCol string, userID uint) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id, users.username, users.avatar, users.bio, users.created_at").
		Joins("JOIN follows ON "+joinCol+" = users.id").
		Where(whereCol+" = ?", userID).
		Order("follows.id ASC").
		Find(&users).Error
	return users, err
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
