package service

import (
	"context"
	"io"
	"log/slog"

	"circle/internal/media"
	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/repository"
)

const (
	threadMediaFolder  = "thread_pictures"
	profileMediaFolder = "profile_pictures"
)

// FileInput is an uploaded attachment read from a multipart request.
type FileInput struct {
	Reader   io.Reader
	FileName string
}

// ThreadService implements thread, reply and like operations.
type ThreadService struct {
	threadRepo repository.ThreadRepository
	media      media.Store
}

// NewThreadService returns a new ThreadService.
func NewThreadService(threadRepo repository.ThreadRepository, mediaStore media.Store) *ThreadService {
	return &ThreadService{threadRepo: threadRepo, media: mediaStore}
}

// CreateThread stores a new thread, uploading the attachment first when one
// is present.
func (s *ThreadService) CreateThread(ctx context.Context, userID uint, content string, file *FileInput) (*models.Thread, error) {
	if content == "" && file == nil {
		return nil, models.NewValidationError("Content or file is required")
	}

	thread := &models.Thread{
		UserID:  userID,
		Content: content,
	}

	if file != nil {
		result, err := s.media.Upload(ctx, file.Reader, threadMediaFolder, file.FileName)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		thread.FileURL = &result.URL
		thread.FileName = &result.FileName
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}

	return s.threadRepo.GetByID(ctx, thread.ID)
}

// GetThread returns a thread with its author, replies and counts.
func (s *ThreadService) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	return s.threadRepo.GetByID(ctx, id)
}

// ListThreads returns all threads, newest first, optionally filtered by author.
func (s *ThreadService) ListThreads(ctx context.Context, authorID *uint) ([]*models.Thread, error) {
	return s.threadRepo.List(ctx, authorID)
}

// UpdateThread replaces a thread's content and/or attachment. A replaced
// attachment's old remote copy is deleted best-effort: a failed delete is
// logged, never surfaced.
func (s *ThreadService) UpdateThread(ctx context.Context, id uint, content string, file *FileInput) (*models.Thread, error) {
	if content == "" && file == nil {
		return nil, models.NewValidationError("Content or file is required")
	}

	thread, err := s.threadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if content != "" {
		thread.Content = content
	}

	if file != nil {
		if thread.FileURL != nil {
			if publicID := media.PublicIDFromURL(*thread.FileURL); publicID != "" {
				if destroyErr := s.media.Destroy(ctx, publicID); destroyErr != nil {
					middleware.Logger.WarnContext(ctx, "failed to delete replaced attachment",
						slog.Any("thread_id", thread.ID),
						slog.String("public_id", publicID),
						slog.String("error", destroyErr.Error()),
					)
				}
			}
		}

		result, err := s.media.Upload(ctx, file.Reader, threadMediaFolder, file.FileName)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		thread.FileURL = &result.URL
		thread.FileName = &result.FileName
	}

	if err := s.threadRepo.Update(ctx, thread); err != nil {
		return nil, err
	}

	return s.threadRepo.GetByID(ctx, thread.ID)
}

// DeleteThread removes a thread with its replies and likes. Existence is
// checked before ownership so a missing thread reports 404, not 403.
func (s *ThreadService) DeleteThread(ctx context.Context, id, callerID uint) error {
	thread, err := s.threadRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if thread.UserID != callerID {
		return models.NewForbiddenError("You are not authorized to delete this thread")
	}
	return s.threadRepo.Delete(ctx, id)
}

// ToggleLike flips the caller's like on a thread and returns the refreshed
// thread together with the resulting like state.
func (s *ThreadService) ToggleLike(ctx context.Context, userID, threadID uint) (*models.Thread, bool, error) {
	if _, err := s.threadRepo.GetByID(ctx, threadID); err != nil {
		return nil, false, err
	}

	liked, err := s.threadRepo.ToggleLike(ctx, userID, threadID)
	if err != nil {
		return nil, false, err
	}

	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, false, err
	}
	return thread, liked, nil
}

// CreateReply adds a reply under an existing thread.
func (s *ThreadService) CreateReply(ctx context.Context, threadID, userID uint, content string, file *FileInput) (*models.Reply, error) {
	if content == "" && file == nil {
		return nil, models.NewValidationError("Content or file is required")
	}

	if _, err := s.threadRepo.GetByID(ctx, threadID); err != nil {
		return nil, err
	}

	reply := &models.Reply{
		ThreadID: threadID,
		UserID:   userID,
		Content:  content,
	}

	if file != nil {
		result, err := s.media.Upload(ctx, file.Reader, threadMediaFolder, file.FileName)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		reply.FileURL = &result.URL
		reply.FileName = &result.FileName
	}

	if err := s.threadRepo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	return s.threadRepo.GetReply(ctx, reply.ID)
}

// ListReplies returns a thread's replies, oldest first.
func (s *ThreadService) ListReplies(ctx context.Context, threadID uint) ([]models.Reply, error) {
	if _, err := s.threadRepo.GetByID(ctx, threadID); err != nil {
		return nil, err
	}
	return s.threadRepo.RepliesByThread(ctx, threadID)
}

// DeleteReply removes a reply. Both the reply author and the parent thread's
// author may delete it.
func (s *ThreadService) DeleteReply(ctx context.Context, threadID, replyID, callerID uint) error {
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}

	reply, err := s.threadRepo.GetReply(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.ThreadID != threadID {
		return models.NewNotFoundError("Reply", replyID)
	}

	if reply.UserID != callerID && thread.UserID != callerID {
		return models.NewForbiddenError("You are not authorized to delete this reply")
	}

	return s.threadRepo.DeleteReply(ctx, replyID)
}
