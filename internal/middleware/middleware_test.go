package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxHandler_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&ctxHandler{slog.NewTextHandler(&buf, nil)})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(42))
	logger.With("component", "test").InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "user_id=42")
	assert.Contains(t, out, "component=test")
}

func TestContextMiddleware_PropagatesLocals(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "abc")
		c.Locals("userID", uint(7))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		assert.Equal(t, "abc", ctx.Value(RequestIDKey))
		assert.Equal(t, uint(7), ctx.Value(UserIDKey))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		target     string
		allowQuery bool
		want       string
	}{
		{"Header", "Bearer abc.def", "/", false, "abc.def"},
		{"Lowercase scheme", "bearer xyz", "/", false, "xyz"},
		{"Wrong scheme", "Basic dXNlcg==", "/", false, ""},
		{"Missing", "", "/", false, ""},
		{"Query ignored", "", "/?token=q1", false, ""},
		{"Query allowed", "", "/?token=q1", true, "q1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				got = BearerToken(c, tt.allowQuery)
				return nil
			})
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
