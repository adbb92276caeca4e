package middleware

import (
	"context"
	"strconv"
	"time"

	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const keyPrefixRateLimit = "rl:"

// Limit is a fixed-window request budget for one route.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	// Strict rejects requests with 503 while a configured Redis is failing.
	// Other limits let traffic through.
	Strict bool
}

// Route budgets. Credential endpoints are strict so a Redis outage cannot
// open them to unbounded guessing.
var (
	RegisterLimit   = Limit{Name: "register", Max: 5, Window: 10 * time.Minute, Strict: true}
	LoginLimit      = Limit{Name: "login", Max: 10, Window: 5 * time.Minute, Strict: true}
	CreatePostLimit = Limit{Name: "create_post", Max: 10, Window: time.Minute}
	CommentLimit    = Limit{Name: "create_comment", Max: 20, Window: time.Minute}
	SearchLimit     = Limit{Name: "user_search", Max: 30, Window: time.Minute}
	FollowLimit     = Limit{Name: "follow", Max: 30, Window: time.Minute}
	UploadLimit     = Limit{Name: "upload", Max: 20, Window: 10 * time.Minute}
)

// Limiter counts requests per (limit, subject) in Redis.
type Limiter struct {
	rdb      *redis.Client
	disabled bool
}

// NewLimiter returns a Limiter for env. Limiting is off in test and
// development, and when rdb is nil.
func NewLimiter(rdb *redis.Client, env string) *Limiter {
	switch env {
	case "", "test", "development":
		return &Limiter{rdb: rdb, disabled: true}
	}
	return &Limiter{rdb: rdb, disabled: rdb == nil}
}

// Allow records one request by subject against limit. It returns whether the
// request fits the window and, when it does not, how long until it resets.
func (l *Limiter) Allow(ctx context.Context, limit Limit, subject string) (bool, time.Duration, error) {
	if l == nil || l.disabled {
		return true, 0, nil
	}

	key := keyPrefixRateLimit + limit.Name + ":" + subject
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, limit.Window)
	}
	if cnt <= int64(limit.Max) {
		return true, 0, nil
	}
	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = limit.Window
	}
	return false, ttl, nil
}

// Handler enforces limit on a route. Requests are keyed by the authenticated
// user when one is set, otherwise by client IP.
func (l *Limiter) Handler(limit Limit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(uint); ok {
			subject = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		allowed, reset, err := l.Allow(c.UserContext(), limit, subject)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				"limit", limit.Name, "strict", limit.Strict, "error", err.Error())
			if limit.Strict {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Service temporarily unavailable",
					Code:  models.CodeUnavailable,
				})
			}
			return c.Next()
		}

		if !allowed {
			if reset > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(reset.Round(time.Second)/time.Second)))
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later",
				Code:  models.CodeRateLimited,
			})
		}
		return c.Next()
	}
}
