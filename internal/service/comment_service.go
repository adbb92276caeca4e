package service

import (
	"context"
	"strings"

	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
}

type AddCommentInput struct {
	AuthorID uint
	PostID   uint
	Content  string
}

func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// AddComment appends a comment to a post and returns it with its author.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if !validation.MaxRunes(content, validation.MaxCommentLength) {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: in.AuthorID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}
