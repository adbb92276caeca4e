package server

import (
	"net/http"
	"testing"

	"murmur/internal/config"
	"murmur/internal/middleware"
	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decode[AuthResponse](t, resp)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, "alice@example.com", registered.User.Email)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decode[AuthResponse](t, resp)
	assert.Equal(t, "Login successful", loggedIn.Message)

	resp = env.do(t, http.MethodGet, "/api/users/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[models.User](t, resp)
	assert.Equal(t, registered.User.ID, me.ID)
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t, false)
	env.createUser(t, "taken")

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{
			name:    "missing fields",
			body:    RegisterRequest{Username: "bob"},
			status:  http.StatusBadRequest,
			message: "Username, email, and password are required",
		},
		{
			name:    "duplicate username",
			body:    RegisterRequest{Username: "taken", Email: "new@example.com", Password: "password123"},
			status:  http.StatusBadRequest,
			message: "User already exists",
		},
		{
			name:    "duplicate email",
			body:    RegisterRequest{Username: "fresh", Email: "taken@example.com", Password: "password123"},
			status:  http.StatusBadRequest,
			message: "User already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[models.ErrorResponse](t, resp)
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, models.CodeValidation, body.Code)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t, false)
	env.createUser(t, "alice")

	for _, body := range []LoginRequest{
		{Email: "alice@example.com", Password: "wrong-password1"},
		{Email: "nobody@example.com", Password: "password123"},
	} {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, models.CodeInvalidCredentials, decode[models.ErrorResponse](t, resp).Code)
	}
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/auth/login", "", stringsReader("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", decode[models.ErrorResponse](t, resp).Error)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/posts", "", CreatePostRequest{Content: "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authorization required", decode[models.ErrorResponse](t, resp).Error)

	resp = env.do(t, http.MethodPost, "/api/posts", "garbage", CreatePostRequest{Content: "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", decode[models.ErrorResponse](t, resp).Error)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t, true)
	_, token := env.createUser(t, "alice")

	resp := env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", decode[models.ErrorResponse](t, resp).Error)
}

func TestLogin_RateLimitedInProduction(t *testing.T) {
	env := newTestEnv(t, true, func(c *config.Config) { c.Env = "production" })
	env.createUser(t, "alice")

	bad := LoginRequest{Email: "alice@example.com", Password: "wrong-password1"}
	for i := 0; i < middleware.LoginLimit.Max; i++ {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := env.do(t, http.MethodPost, "/api/auth/login", "", bad)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, models.CodeRateLimited, decode[models.ErrorResponse](t, resp).Code)

	// A Redis outage closes credential routes instead of opening them.
	env.redis.SetError("connection refused")
	resp = env.do(t, http.MethodPost, "/api/auth/login", "", bad)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
