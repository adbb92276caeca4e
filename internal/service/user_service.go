package service

import (
	"context"
	"strings"

	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/validation"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
}

// UpdateProfileInput carries optional profile fields; nil means unchanged.
type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Bio      *string
	Avatar   *string
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
	}
}

// GetMe returns the caller's own account, email included.
func (s *UserService) GetMe(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetProfile assembles the public profile of userID.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := *user
	public.Email = ""

	followers, err := s.followRepo.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats models.UserStats
	if stats.PostsCount, err = s.postRepo.CountByAuthor(ctx, userID); err != nil {
		return nil, err
	}
	if stats.FollowersCount, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if stats.FollowingCount, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}

	return &models.Profile{
		User:      &public,
		Followers: followers,
		Following: following,
		Posts:     posts,
		Stats:     stats,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = username
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if !validation.MaxRunes(bio, validation.MaxBioLength) {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = bio
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search finds up to repository.SearchLimit users whose username or email
// contains query, ignoring case.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, repository.SearchLimit)
}
