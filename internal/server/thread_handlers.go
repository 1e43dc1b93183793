package server

import (
	"strconv"
	"strings"

	"circle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetThreads handles GET /threads. Listing is public; an optional ?userId
// query filters by author.
func (s *Server) GetThreads(c *fiber.Ctx) error {
	var authorID *uint
	if raw := c.Query("userId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid user ID",
			})
		}
		id := uint(parsed)
		authorID = &id
	}

	threads, err := s.threadService.ListThreads(c.UserContext(), authorID)
	if err != nil {
		return writeError(c, err, "error", "Thread not found")
	}
	if threads == nil {
		threads = []*models.Thread{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"threads": threads,
	})
}

// CreateThread handles POST /threads. The body is multipart: a `content`
// text field and/or a `file` attachment.
func (s *Server) CreateThread(c *fiber.Ctx) error {
	content := c.FormValue("content")
	file, err := formFile(c, "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file upload",
		})
	}

	thread, err := s.threadService.CreateThread(c.UserContext(), callerID(c), content, file)
	if err != nil {
		return writeError(c, err, "error", "Thread not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Thread created successfully",
		"thread":  thread,
	})
}

// GetThread handles GET /threads/:id
func (s *Server) GetThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "error")
	if err != nil {
		return nil
	}

	thread, err := s.threadService.GetThread(c.UserContext(), id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Thread not found",
			})
		}
		return writeError(c, err, "error", "Thread not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"thread": thread,
	})
}

// UpdateThread handles PUT /thread/:id
func (s *Server) UpdateThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "error")
	if err != nil {
		return nil
	}

	content := c.FormValue("content")
	file, err := formFile(c, "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file upload",
		})
	}

	thread, err := s.threadService.UpdateThread(c.UserContext(), id, content, file)
	if err != nil {
		return writeError(c, err, "error", "Thread not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Thread updated successfully",
		"thread":  thread,
	})
}

// DeleteThread handles DELETE /thread/:id
func (s *Server) DeleteThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "error")
	if err != nil {
		return nil
	}

	if err := s.threadService.DeleteThread(c.UserContext(), id, callerID(c)); err != nil {
		return writeError(c, err, "error", "Thread not found")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Thread deleted successfully",
	})
}

// ToggleLike handles POST /threads/:threadId/like and returns the refreshed
// thread with its updated like count.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	threadID, err := s.parseID(c, "threadId", "error")
	if err != nil {
		return nil
	}

	thread, liked, err := s.threadService.ToggleLike(c.UserContext(), callerID(c), threadID)
	if err != nil {
		return writeError(c, err, "error", "Thread not found")
	}

	message := "Unliked successfully"
	if liked {
		message = "Liked successfully"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
		"thread":  thread,
	})
}

// CreateReply handles POST /threads/:threadId/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	threadID, err := s.parseID(c, "threadId", "error")
	if err != nil {
		return nil
	}

	content := c.FormValue("content")
	file, err := formFile(c, "file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file upload",
		})
	}

	reply, err := s.threadService.CreateReply(c.UserContext(), threadID, callerID(c), content, file)
	if err != nil {
		return writeError(c, err, "error", "Thread not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Reply created successfully",
		"reply":   reply,
	})
}

// GetReplies handles GET /threads/:threadId/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	threadID, err := s.parseID(c, "threadId", "error")
	if err != nil {
		return nil
	}

	replies, err := s.threadService.ListReplies(c.UserContext(), threadID)
	if err != nil {
		return writeError(c, err, "error", "Thread not found")
	}
	if replies == nil {
		replies = []models.Reply{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"replies": replies,
	})
}

// DeleteReply handles DELETE /threads/:threadId/replies/:replyId
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	threadID, err := s.parseID(c, "threadId", "error")
	if err != nil {
		return nil
	}
	replyID, err := s.parseID(c, "replyId", "error")
	if err != nil {
		return nil
	}

	if err := s.threadService.DeleteReply(c.UserContext(), threadID, replyID, callerID(c)); err != nil {
		// Distinguish a missing reply from a missing thread.
		notFound := "Thread not found"
		if appErr, ok := models.AsAppError(err); ok && strings.HasPrefix(appErr.Message, "Reply") {
			notFound = "Reply not found"
		}
		return writeError(c, err, "error", notFound)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Reply deleted successfully",
	})
}
