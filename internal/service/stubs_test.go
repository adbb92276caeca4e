package service

import (
	"context"
	"errors"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	searchFn        func(context.Context, string, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit)
}

// memoryUsers returns a userRepoStub backed by a map, enforcing unique
// usernames and emails the way the database does.
func memoryUsers() (*userRepoStub, map[uint]*models.User) {
	users := map[uint]*models.User{}
	var nextID uint
	find := func(match func(*models.User) bool, key any) (*models.User, error) {
		for _, u := range users {
			if match(u) {
				cp := *u
				return &cp, nil
			}
		}
		return nil, models.NewNotFoundError("User", key)
	}
	stub := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return find(func(u *models.User) bool { return u.ID == id }, id)
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return find(func(u *models.User) bool { return u.Email == email }, email)
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return find(func(u *models.User) bool { return u.Username == username }, username)
		},
		createFn: func(_ context.Context, user *models.User) error {
			for _, u := range users {
				if u.Username == user.Username || u.Email == user.Email {
					return models.NewValidationError("User already exists")
				}
			}
			nextID++
			user.ID = nextID
			cp := *user
			users[user.ID] = &cp
			return nil
		},
		updateFn: func(_ context.Context, user *models.User) error {
			for _, u := range users {
				if u.ID != user.ID && u.Username == user.Username {
					return models.NewValidationError("Username already taken")
				}
			}
			cp := *user
			users[user.ID] = &cp
			return nil
		},
		searchFn: func(_ context.Context, _ string, _ int) ([]models.User, error) { return nil, nil },
	}
	return stub, users
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	toggleFn         func(context.Context, uint, uint) (*models.FollowResult, error)
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	followersFn      func(context.Context, uint) ([]models.User, error)
	followingFn      func(context.Context, uint) ([]models.User, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Toggle(ctx context.Context, followerID, followeeID uint) (*models.FollowResult, error) {
	return s.toggleFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

// memoryFollows is a followRepoStub over an edge set.
func memoryFollows(known ...uint) *followRepoStub {
	type edge struct{ from, to uint }
	edges := map[edge]bool{}
	exists := map[uint]bool{}
	for _, id := range known {
		exists[id] = true
	}
	count := func(match func(edge) bool) int64 {
		var n int64
		for e := range edges {
			if match(e) {
				n++
			}
		}
		return n
	}
	return &followRepoStub{
		toggleFn: func(_ context.Context, from, to uint) (*models.FollowResult, error) {
			if !exists[to] {
				return nil, models.NewNotFoundError("User", to)
			}
			e := edge{from, to}
			if edges[e] {
				delete(edges, e)
			} else {
				edges[e] = true
			}
			return &models.FollowResult{
				Following:      edges[e],
				FollowersCount: count(func(x edge) bool { return x.to == to }),
			}, nil
		},
		isFollowingFn: func(_ context.Context, from, to uint) (bool, error) {
			return edges[edge{from, to}], nil
		},
		followersFn: func(_ context.Context, id uint) ([]models.User, error) {
			out := []models.User{}
			for e := range edges {
				if e.to == id {
					out = append(out, models.User{ID: e.from})
				}
			}
			return out, nil
		},
		followingFn: func(_ context.Context, id uint) ([]models.User, error) {
			out := []models.User{}
			for e := range edges {
				if e.from == id {
					out = append(out, models.User{ID: e.to})
				}
			}
			return out, nil
		},
		countFollowersFn: func(_ context.Context, id uint) (int64, error) {
			return count(func(x edge) bool { return x.to == id }), nil
		},
		countFollowingFn: func(_ context.Context, id uint) (int64, error) {
			return count(func(x edge) bool { return x.from == id }), nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listFn          func(context.Context, int, int) ([]*models.Post, int64, error)
	listByAuthorFn  func(context.Context, uint) ([]*models.Post, error)
	countByAuthorFn func(context.Context, uint) (int64, error)
	deleteFn        func(context.Context, uint) error
	toggleLikeFn    func(context.Context, uint, uint) (*models.LikeResult, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}

// memoryPosts is a postRepoStub over an in-memory post table with like sets.
func memoryPosts() (*postRepoStub, map[uint]*models.Post) {
	posts := map[uint]*models.Post{}
	var nextID uint
	get := func(id uint) (*models.Post, error) {
		p, ok := posts[id]
		if !ok {
			return nil, models.NewNotFoundError("Post", id)
		}
		cp := *p
		cp.Author = models.User{ID: p.AuthorID}
		cp.Hydrate()
		return &cp, nil
	}
	stub := &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			nextID++
			post.ID = nextID
			cp := *post
			posts[post.ID] = &cp
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return get(id) },
		listFn: func(_ context.Context, _, _ int) ([]*models.Post, int64, error) {
			return []*models.Post{}, int64(len(posts)), nil
		},
		listByAuthorFn: func(_ context.Context, authorID uint) ([]*models.Post, error) {
			out := []*models.Post{}
			for id, p := range posts {
				if p.AuthorID == authorID {
					cp, _ := get(id)
					out = append(out, cp)
				}
			}
			return out, nil
		},
		countByAuthorFn: func(_ context.Context, authorID uint) (int64, error) {
			var n int64
			for _, p := range posts {
				if p.AuthorID == authorID {
					n++
				}
			}
			return n, nil
		},
		deleteFn: func(_ context.Context, id uint) error {
			if _, ok := posts[id]; !ok {
				return models.NewNotFoundError("Post", id)
			}
			delete(posts, id)
			return nil
		},
		toggleLikeFn: func(_ context.Context, userID, postID uint) (*models.LikeResult, error) {
			p, ok := posts[postID]
			if !ok {
				return nil, models.NewNotFoundError("Post", postID)
			}
			kept := make([]models.Like, 0, len(p.Likes))
			removed := false
			for _, l := range p.Likes {
				if l.UserID == userID {
					removed = true
					continue
				}
				kept = append(kept, l)
			}
			p.Likes = kept
			if !removed {
				p.Likes = append(p.Likes, models.Like{UserID: userID, PostID: postID})
			}
			return &models.LikeResult{Liked: !removed, LikesCount: int64(len(p.Likes))}, nil
		},
	}
	return stub, posts
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
