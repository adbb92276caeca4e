package repository

import (
	"context"
	"sync"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFollowRepository_ToggleRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	res, err := repo.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.Equal(t, int64(1), res.FollowersCount)

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := repo.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)
	assert.Empty(t, followers[0].Email)

	followees, err := repo.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followees, 1)
	assert.Equal(t, "bob", followees[0].Username)

	res, err = repo.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.Equal(t, int64(0), res.FollowersCount)

	n, err := repo.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFollowRepository_ToggleMissingTarget(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	alice := createUser(t, db, "alice")

	_, err := repo.Toggle(context.Background(), alice.ID, 999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestFollowRepository_DirectedEdges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	_, err := repo.Toggle(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	res, err := repo.Toggle(ctx, bob.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.FollowersCount)

	following, err := repo.IsFollowing(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)

	followers, err := repo.Followers(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "alice", followers[0].Username)
	assert.Equal(t, "bob", followers[1].Username)
}

// assertEdge checks the (follower, followee) row count against the read
// models for that edge.
func assertEdge(t *testing.T, db *gorm.DB, repo FollowRepository, follower, followee uint, want bool) {
	t.Helper()
	ctx := context.Background()

	var rows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", follower, followee).
		Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1))

	following, err := repo.IsFollowing(ctx, follower, followee)
	require.NoError(t, err)
	assert.Equal(t, want, following)
	assert.Equal(t, following, rows == 1)
}

func TestFollowRepository_ConcurrentTogglesSameEdge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	// An odd number of toggles leaves the edge in place.
	const toggles = 9
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := repo.Toggle(ctx, alice.ID, bob.ID)
			if assert.NoError(t, err) {
				assert.Equal(t, res.Following, res.FollowersCount == 1)
			}
		}()
	}
	wg.Wait()

	assertEdge(t, db, repo, alice.ID, bob.ID, true)
	followers, err := repo.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
}

func TestFollowRepository_ConcurrentTogglesBothDirections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	var wg sync.WaitGroup
	toggle := func(from, to uint, n int) {
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Toggle(ctx, from, to)
				assert.NoError(t, err)
			}()
		}
	}
	toggle(alice.ID, bob.ID, 5)
	toggle(bob.ID, alice.ID, 4)
	wg.Wait()

	assertEdge(t, db, repo, alice.ID, bob.ID, true)
	assertEdge(t, db, repo, bob.ID, alice.ID, false)

	aliceFollowers, err := repo.CountFollowers(ctx, alice.ID)
	require.NoError(t, err)
	bobFollowers, err := repo.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	aliceFollowing, err := repo.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), aliceFollowers)
	assert.Equal(t, int64(1), bobFollowers)
	assert.Equal(t, int64(1), aliceFollowing)
}
