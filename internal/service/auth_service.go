// Package service holds the application's business rules on top of the repositories.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"murmur/internal/config"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/observability"
	"murmur/internal/repository"
	"murmur/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenIssuer   = "murmur-api"
	TokenAudience = "murmur-client"
	BcryptCost    = 12

	revokedKeyPrefix = "blacklist:"
)

// tokenClaims is the JWT payload. Subject carries the decimal user id.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is an authenticated caller resolved from a bearer token.
type Session struct {
	UserID    uint
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	redis  *redis.Client
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewAuthService builds an AuthService. rdb may be nil, in which case
// logout cannot revoke tokens.
func NewAuthService(users repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:  users,
		redis:  rdb,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		cost:   BcryptCost,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Register")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	username := strings.TrimSpace(in.Username)
	email := validation.NormalizeEmail(in.Email)

	if username == "" || email == "" || in.Password == "" {
		err = models.NewValidationError("Username, email, and password are required")
		return nil, err
	}
	if vErr := validation.ValidateUsername(username); vErr != nil {
		err = models.NewValidationError(vErr.Error())
		return nil, err
	}
	if vErr := validation.ValidateEmail(email); vErr != nil {
		err = models.NewValidationError(vErr.Error())
		return nil, err
	}
	if vErr := validation.ValidatePassword(in.Password); vErr != nil {
		err = models.NewValidationError(vErr.Error())
		return nil, err
	}

	hash, hErr := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if hErr != nil {
		err = models.NewInternalError(hErr)
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err = s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, tErr := s.IssueToken(user)
	if tErr != nil {
		err = models.NewInternalError(tErr)
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Login")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		err = models.NewValidationError("Email and password are required")
		return nil, err
	}

	user, lookupErr := s.users.GetByEmail(ctx, email)
	if lookupErr != nil {
		if models.ErrorCode(lookupErr) == models.CodeNotFound {
			return nil, models.NewInvalidCredentialsError()
		}
		err = lookupErr
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewInvalidCredentialsError()
	}

	token, tErr := s.IssueToken(user)
	if tErr != nil {
		err = models.NewInternalError(tErr)
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// IssueToken signs an HS256 session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := s.now()
	claims := tokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate resolves a bearer token to a session. The token must be
// well formed, signed with the configured secret, unexpired, not revoked,
// and name a user that still exists.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	if claims.ID != "" && s.redis != nil {
		n, rErr := s.redis.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if rErr == nil && n > 0 {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}

	if _, err := s.users.GetByID(ctx, uint(userID)); err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("User not found")
		}
		return nil, err
	}

	session := &Session{
		UserID:   uint(userID),
		Username: claims.Username,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Logout revokes the session's token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, session *Session) error {
	ctx, span := observability.StartSpan(ctx, "AuthService.Logout",
		attribute.Int64("user.id", int64(session.UserID)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if session.TokenID == "" {
		return nil
	}
	if s.redis == nil {
		middleware.Logger.WarnContext(ctx, "logout without redis, token stays valid until expiry")
		return nil
	}

	remaining := session.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err = s.redis.Set(ctx, revokedKeyPrefix+session.TokenID, "1", remaining).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
