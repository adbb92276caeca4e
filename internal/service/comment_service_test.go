package service

import (
	"context"
	"strings"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment(t *testing.T) {
	var stored *models.Comment
	repo := &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			if c.PostID != 1 {
				return models.NewNotFoundError("Post", c.PostID)
			}
			c.ID = 10
			c.Author = models.User{ID: c.AuthorID, Username: "bob"}
			stored = c
			return nil
		},
	}
	svc := NewCommentService(repo)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, AddCommentInput{AuthorID: 2, PostID: 1, Content: "  nice  "})
	require.NoError(t, err)
	assert.Equal(t, "nice", comment.Content)
	assert.Equal(t, "bob", comment.Author.Username)
	assert.Same(t, stored, comment)

	_, err = svc.AddComment(ctx, AddCommentInput{AuthorID: 2, PostID: 9, Content: "lost"})
	assertAppError(t, err, models.CodeNotFound)
}

func TestCommentService_AddCommentValidation(t *testing.T) {
	repo := &commentRepoStub{
		createFn: func(context.Context, *models.Comment) error {
			t.Fatal("repository must not be called")
			return nil
		},
	}
	svc := NewCommentService(repo)

	_, err := svc.AddComment(context.Background(), AddCommentInput{AuthorID: 1, PostID: 1, Content: " \n\t "})
	assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, "Comment content is required", err.Error())

	_, err = svc.AddComment(context.Background(), AddCommentInput{AuthorID: 1, PostID: 1, Content: strings.Repeat("x", 2001)})
	assertAppError(t, err, models.CodeValidation)
}

func TestCommentService_WithMockRepository(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(*MockCommentRepository)
		wantCode  string
	}{
		{
			name: "stores trimmed content",
			mockSetup: func(m *MockCommentRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
					return c.Content == "trimmed" && c.AuthorID == 3 && c.PostID == 9
				})).Return(nil).Once()
			},
		},
		{
			name: "missing post",
			mockSetup: func(m *MockCommentRepository) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(models.NewNotFoundError("Post", 9)).Once()
			},
			wantCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCommentRepository)
			tt.mockSetup(repo)
			svc := NewCommentService(repo)

			comment, err := svc.AddComment(context.Background(), AddCommentInput{
				AuthorID: 3,
				PostID:   9,
				Content:  "  trimmed  ",
			})
			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantCode)
				assert.Nil(t, comment)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "trimmed", comment.Content)
			}
			repo.AssertExpectations(t)
		})
	}

	t.Run("list passes through", func(t *testing.T) {
		repo := new(MockCommentRepository)
		repo.On("ListByPost", mock.Anything, uint(4)).Return([]models.Comment{{ID: 1}, {ID: 2}}, nil)

		comments, err := NewCommentService(repo).ListComments(context.Background(), 4)
		require.NoError(t, err)
		assert.Len(t, comments, 2)
		repo.AssertExpectations(t)
	})
}
