package server

import (
	"context"

	"murmur/internal/featureflags"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/observability"
)

// publishUserEvent delivers an event to every connection of userID. With
// Redis the event goes through pub/sub, and the subscriber feeds the local
// hub, so it is never pushed to the hub directly as well.
func (s *Server) publishUserEvent(ctx context.Context, actorID, userID uint, eventType string, payload any) {
	if !s.featureFlags.Enabled(featureflags.RealtimeEvents, actorID) {
		return
	}
	message, err := notifications.Encode(eventType, payload)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode event", "type", eventType, "error", err.Error())
		return
	}

	observability.RealtimeEventsTotal.WithLabelValues(eventType).Inc()
	if s.notifier.Enabled() {
		if err := s.notifier.PublishUser(context.WithoutCancel(ctx), userID, message); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish event",
				"type", eventType, "user_id", userID, "error", err.Error())
		}
		return
	}
	s.hub.Broadcast(userID, message)
}

func (s *Server) publishBroadcastEvent(ctx context.Context, actorID uint, eventType string, payload any) {
	if !s.featureFlags.Enabled(featureflags.RealtimeEvents, actorID) {
		return
	}
	message, err := notifications.Encode(eventType, payload)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode event", "type", eventType, "error", err.Error())
		return
	}

	observability.RealtimeEventsTotal.WithLabelValues(eventType).Inc()
	if s.notifier.Enabled() {
		if err := s.notifier.PublishBroadcast(context.WithoutCancel(ctx), message); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish broadcast event",
				"type", eventType, "error", err.Error())
		}
		return
	}
	s.hub.BroadcastAll(message)
}

// notifyPostAuthor sends an event about postID to its author unless the
// author is the actor.
func (s *Server) notifyPostAuthor(ctx context.Context, actorID, postID uint, eventType string, payload map[string]any) {
	post, err := s.postService.GetPost(ctx, postID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load post for event",
			"post_id", postID, "type", eventType, "error", err.Error())
		return
	}
	if post.AuthorID == actorID {
		return
	}
	payload["actorId"] = actorID
	s.publishUserEvent(ctx, actorID, post.AuthorID, eventType, payload)
}

func userSummary(user *models.User) map[string]any {
	if user == nil {
		return nil
	}
	return map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
	}
}
