package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Message: "User created successfully",
		Token:   res.Token,
		User:    res.User,
	})
}

// Login handles user login
// @Summary Log in
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(AuthResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

// Logout revokes the caller's token.
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), currentSession(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Logged out successfully"})
}
