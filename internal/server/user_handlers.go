package server

import (
	"circle/internal/models"
	"circle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(users)
}

// GetUser handles GET /users/:userId
func (s *Server) GetUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "message")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateUser handles PUT /users/:userId. The body is multipart: text fields
// plus an optional avatar image.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "message")
	if err != nil {
		return nil
	}

	avatar, err := formFile(c, "profile_pictures", "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid file upload",
		})
	}

	input := service.UpdateUserInput{
		FullName:       c.FormValue("fullName"),
		Username:       c.FormValue("username"),
		Bio:            c.FormValue("bio"),
		ProfilePicture: c.FormValue("profilePicture"),
		Avatar:         avatar,
	}

	user, err := s.userService.UpdateUser(c.UserContext(), userID, input)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "User updated successfully",
		"updatedUser": user,
	})
}

// PatchUser handles PATCH /users/:userId
func (s *Server) PatchUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "message")
	if err != nil {
		return nil
	}

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	user, err := s.userService.PatchUser(c.UserContext(), userID, body)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "User updated successfully",
		"updatedUser": user,
	})
}

// DeleteUser handles DELETE /users/:userId. The account is soft-deleted,
// keeping its threads and replies readable.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "message")
	if err != nil {
		return nil
	}

	user, err := s.userService.DeleteUser(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "User deleted successfully",
		"deletedUser": user,
	})
}

// ToggleFollow handles POST /users/:userId/follow. A resulting follow
// answers 201, an unfollow 200.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, parseErr := c.ParamsInt("userId")
	if parseErr != nil || targetID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	edge, err := s.userService.ToggleFollow(c.UserContext(), callerID(c), uint(targetID))
	if err != nil {
		status := statusForError(err)
		message := "Internal server error"
		switch {
		case models.IsCode(err, models.CodeNotFound):
			message = "User not found"
		case models.IsCode(err, models.CodeValidation):
			if appErr, ok := models.AsAppError(err); ok {
				message = appErr.Message
			}
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}

	if edge != nil {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Followed successfully",
			"data":    edge,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Unfollowed successfully",
	})
}

// GetFollowers handles GET /users/:userId/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "message")
	if err != nil {
		return nil
	}

	followers, err := s.userService.Followers(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(followers)
}

// GetFollowing handles GET /users/:userId/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "message")
	if err != nil {
		return nil
	}

	following, err := s.userService.Following(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "message", "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(following)
}

// SuggestUsers handles GET /users/:userId/suggest-users. Suggestions are
// computed for the authenticated caller; accounts already following the
// caller rank first.
func (s *Server) SuggestUsers(c *fiber.Ctx) error {
	if _, err := s.parseID(c, "userId", "message"); err != nil {
		return nil
	}

	suggestions, err := s.userService.SuggestUsers(c.UserContext(), callerID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(suggestions)
}
