package server

import (
	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommentRequest is the body of POST /api/posts/:id/comments.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse wraps a created comment.
type CommentResponse struct {
	Message string          `json:"message"`
	Comment *models.Comment `json:"comment"`
}

// CreateComment appends a comment to a post.
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)
	ctx := c.UserContext()

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	comment, err := s.commentService.AddComment(ctx, service.AddCommentInput{
		AuthorID: userID,
		PostID:   postID,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.notifyPostAuthor(ctx, userID, postID, notifications.EventCommentAdded, fiber.Map{
		"postId":    postID,
		"commentId": comment.ID,
		"author":    userSummary(&comment.Author),
	})

	return c.Status(fiber.StatusCreated).JSON(CommentResponse{
		Message: "Comment added successfully",
		Comment: comment,
	})
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments on a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}
