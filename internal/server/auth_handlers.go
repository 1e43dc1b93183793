package server

import (
	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the login request body.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// ForgotPasswordRequest carries the identifier starting the reset flow.
type ForgotPasswordRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
}

// ResetPasswordRequest carries the plaintext token and the new password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Login handles POST /auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if req.EmailOrUsername == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email/username and password are required",
		})
	}

	payload, err := s.authService.Login(c.UserContext(), req.EmailOrUsername, req.Password)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	// The follow edges were only loaded for their counts.
	user := payload.User
	user.Followers = nil
	user.Following = nil

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"data": fiber.Map{
			"token": payload.Token,
			"user": fiber.Map{
				"id":             user.ID,
				"email":          user.Email,
				"username":       user.Username,
				"fullName":       user.FullName,
				"profilePicture": user.ProfilePicture,
				"profile":        user.Profile,
				"followersCount": payload.FollowersCount,
				"followingCount": payload.FollowingCount,
			},
			"threads": payload.Threads,
		},
	})
}

// Register handles POST /auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	user, err := s.authService.Register(c.UserContext(), req.Email, req.Password, req.FullName)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered",
		"user":    user,
	})
}

// ForgotPassword handles POST /auth/forgot-password. The success body is
// identical whether or not the identifier resolved to an account.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := s.authService.ForgotPassword(c.UserContext(), req.EmailOrUsername); err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password reset email sent",
	})
}

// ResetPassword handles POST /auth/reset-password
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := s.authService.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password reset successful",
	})
}

// Me handles GET /auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), callerID(c))
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User data retrieved successfully",
		"data":    user,
	})
}
