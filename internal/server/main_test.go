package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:             "test",
		Port:            "0",
		JWTSecret:       "test-secret-with-enough-length-0123456789",
		JWTTTLHours:     1,
		AllowedOrigins:  "*",
		UploadDir:       t.TempDir(),
		UploadMaxSizeMB: 5,
		FeatureFlags:    "realtime_events=on",
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// newTestEnv builds a server over an in-memory database. withRedis adds a
// miniredis instance for cache, revocation and pub/sub.
func newTestEnv(t *testing.T, withRedis bool, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{db: openTestDB(t)}

	var rdb *redis.Client
	if withRedis {
		env.redis = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.redis.Addr()})
	}

	s, err := NewServerWithDeps(cfg, env.db, rdb)
	require.NoError(t, err)
	env.server = s
	env.app = s.NewApp()

	t.Cleanup(func() {
		_ = s.hub.Shutdown(context.Background())
		if sqlDB, err := env.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	})
	return env
}

// createUser inserts a user with a cheap hash and returns it with a token.
func (e *testEnv) createUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, e.db.Create(user).Error)

	token, err := e.server.authService.IssueToken(user)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) createPost(t *testing.T, authorID uint, content string) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: authorID, Content: content}
	require.NoError(t, e.db.Omit("Author").Create(p).Error)
	return p
}

// do sends a request through the app. body is JSON-encoded unless it is
// already an io.Reader.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
