package server

import (
	"net/url"

	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest is the body of PUT /api/users/profile. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

// UserResponse wraps an updated user.
type UserResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// FollowResponse is returned by the follow toggle.
type FollowResponse struct {
	Message        string `json:"message"`
	Following      bool   `json:"following"`
	FollowersCount int64  `json:"followersCount"`
}

// GetMe returns the authenticated user, email included.
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetMe(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile returns a public profile with followers, following, posts
// and stats.
// @Summary User profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id", "user")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// SearchUsers handles GET /api/users/search/:query
// @Summary Search users
// @Description Case-insensitive substring match on username or email, at most 10 results
// @Tags users
// @Produce json
// @Param query path string true "Search text"
// @Success 200 {array} models.User
// @Router /users/search/{query} [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query, err := url.PathUnescape(c.Params("query"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid search query"))
	}

	users, err := s.userService.Search(c.UserContext(), query)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// UpdateProfile handles PUT /api/users/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(UserResponse{
		Message: "Profile updated successfully",
		User:    user,
	})
}

// FollowUser toggles the caller's follow of another user.
// @Summary Follow or unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id", "user")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)
	ctx := c.UserContext()

	res, err := s.followService.ToggleFollow(ctx, userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if res.Following {
		follower := fiber.Map{"id": userID}
		if session := currentSession(c); session != nil {
			follower["username"] = session.Username
		}
		s.publishUserEvent(ctx, userID, targetID, notifications.EventUserFollowed, fiber.Map{
			"follower":       follower,
			"followersCount": res.FollowersCount,
		})
	}

	return c.JSON(FollowResponse{
		Message:        service.FollowMessage(res),
		Following:      res.Following,
		FollowersCount: res.FollowersCount,
	})
}
