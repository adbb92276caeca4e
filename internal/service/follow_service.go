package service

import (
	"context"

	"murmur/internal/models"
	"murmur/internal/observability"
	"murmur/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type FollowService struct {
	followRepo repository.FollowRepository
}

func NewFollowService(followRepo repository.FollowRepository) *FollowService {
	return &FollowService{followRepo: followRepo}
}

// ToggleFollow follows targetID if actorID does not follow it yet, and
// unfollows otherwise.
func (s *FollowService) ToggleFollow(ctx context.Context, actorID, targetID uint) (*models.FollowResult, error) {
	if actorID == targetID {
		return nil, models.NewInvalidOperationError("Cannot follow yourself")
	}

	ctx, span := observability.StartSpan(ctx, "FollowService.ToggleFollow",
		attribute.Int64("actor.id", int64(actorID)),
		attribute.Int64("target.id", int64(targetID)),
	)
	res, err := s.followRepo.Toggle(ctx, actorID, targetID)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	observability.RelationshipToggles.WithLabelValues("follow", observability.ToggleState(res.Following)).Inc()
	return res, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, actorID, targetID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, actorID, targetID)
}

// FollowMessage is the response message for a toggle result.
func FollowMessage(res *models.FollowResult) string {
	if res.Following {
		return "Followed successfully"
	}
	return "Unfollowed successfully"
}
