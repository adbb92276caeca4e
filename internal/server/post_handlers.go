package server

import (
	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

// PostResponse wraps a created post.
type PostResponse struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post"`
}

// LikeResponse is returned by the like toggle.
type LikeResponse struct {
	Message    string `json:"message"`
	Liked      bool   `json:"liked"`
	LikesCount int64  `json:"likesCount"`
}

// GetPosts returns one page of the global feed, newest first.
// @Summary List posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 50)" default(10)
// @Success 200 {object} models.Feed
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	feed, err := s.postService.ListPosts(c.UserContext(),
		c.QueryInt("page", 1), c.QueryInt("limit", service.DefaultPageSize))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post content"
// @Success 201 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: userID,
		Content:  req.Content,
		Image:    req.Image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), userID, notifications.EventPostCreated, fiber.Map{
		"postId": post.ID,
		"author": userSummary(&post.Author),
	})

	return c.Status(fiber.StatusCreated).JSON(PostResponse{
		Message: "Post created successfully",
		Post:    post,
	})
}

// DeletePost handles DELETE /api/posts/:id; only the author may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Post deleted successfully"})
}

// LikePost toggles the caller's like on a post.
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)
	ctx := c.UserContext()

	res, err := s.postService.ToggleLike(ctx, userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if res.Liked {
		s.notifyPostAuthor(ctx, userID, postID, notifications.EventPostLiked, fiber.Map{
			"postId":     postID,
			"likesCount": res.LikesCount,
		})
	}

	return c.JSON(LikeResponse{
		Message:    service.LikeMessage(res),
		Liked:      res.Liked,
		LikesCount: res.LikesCount,
	})
}
