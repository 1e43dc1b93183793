package server

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response under the given body key and
// returns errResponseWritten. Callers should check:
// if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param, key string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			key: "Invalid " + humanizeParam(param),
		})
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "replyId" -> "reply ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// callerID returns the authenticated user's ID set by AuthRequired.
func callerID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// formFile extracts an uploaded file from the multipart form, trying the
// given field names in order. Missing file is not an error: (nil, nil).
func formFile(c *fiber.Ctx, names ...string) (*service.FileInput, error) {
	for _, name := range names {
		header, err := c.FormFile(name)
		if err != nil || header == nil {
			continue
		}
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		return &service.FileInput{Reader: f, FileName: header.Filename}, nil
	}
	return nil, nil
}

// statusForError maps an internal error to its HTTP status.
func statusForError(err error) int {
	appErr, ok := models.AsAppError(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError translates an internal error into the endpoint's wire body.
// key is the endpoint's error body key ("message" or "error"); notFoundMsg
// replaces the internal not-found text, which carries the entity ID.
// Internal failures are logged with their detail and answered generically.
func writeError(c *fiber.Ctx, err error, key, notFoundMsg string) error {
	status := statusForError(err)

	body := "Internal server error"
	switch status {
	case fiber.StatusNotFound:
		body = notFoundMsg
	case fiber.StatusInternalServerError:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	default:
		if appErr, ok := models.AsAppError(err); ok {
			body = appErr.Message
		}
	}

	return c.Status(status).JSON(fiber.Map{key: body})
}
