// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"circle/internal/models"
	"circle/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThreadRepository defines the interface for thread, reply and like operations.
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id uint) (*models.Thread, error)
	List(ctx context.Context, authorID *uint) ([]*models.Thread, error)
	ByAuthor(ctx context.Context, userID uint) ([]*models.Thread, error)
	Update(ctx context.Context, thread *models.Thread) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, threadID uint) (liked bool, err error)
	CreateReply(ctx context.Context, reply *models.Reply) error
	RepliesByThread(ctx context.Context, threadID uint) ([]models.Reply, error)
	GetReply(ctx context.Context, id uint) (*models.Reply, error)
	DeleteReply(ctx context.Context, id uint) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new thread repository.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// applyThreadDetails adds subqueries computing the aggregate counts in a single query.
func (r *threadRepository) applyThreadDetails(db *gorm.DB) *gorm.DB {
	return db.Select("threads.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.thread_id = threads.id) AS like_count, " +
		"(SELECT COUNT(*) FROM replies WHERE replies.thread_id = threads.id) AS reply_count")
}

func (r *threadRepository) Create(ctx context.Context, thread *models.Thread) error {
	defer observability.TrackQuery("insert", "threads")()

	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *threadRepository) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	defer observability.TrackQuery("select", "threads")()

	var thread models.Thread
	err := r.applyThreadDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User").
		First(&thread, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Thread", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &thread, nil
}

// List returns all threads newest first, optionally filtered by author.
func (r *threadRepository) List(ctx context.Context, authorID *uint) ([]*models.Thread, error) {
	defer observability.TrackQuery("select", "threads")()

	var threads []*models.Thread
	q := r.applyThreadDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User")
	if authorID != nil {
		q = q.Where("user_id = ?", *authorID)
	}
	if err := q.Order("created_at DESC").Find(&threads).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return threads, nil
}

// ByAuthor returns the author's threads with aggregate counts, newest first,
// without the reply preloads (the login payload only needs summaries).
func (r *threadRepository) ByAuthor(ctx context.Context, userID uint) ([]*models.Thread, error) {
	defer observability.TrackQuery("select", "threads")()

	var threads []*models.Thread
	if err := r.applyThreadDetails(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&threads).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return threads, nil
}

func (r *threadRepository) Update(ctx context.Context, thread *models.Thread) error {
	defer observability.TrackQuery("update", "threads")()

	if err := r.db.WithContext(ctx).Save(thread).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *threadRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "threads")()

	// Likes and replies go with the thread; threads are hard-deleted.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Thread{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike removes the like when present, else inserts it. The insert uses
// ON CONFLICT DO NOTHING so a concurrent duplicate resolves to the same
// "liked" state instead of a constraint violation.
func (r *threadRepository) ToggleLike(ctx context.Context, userID, threadID uint) (bool, error) {
	defer observability.TrackQuery("toggle", "likes")()

	del := r.db.WithContext(ctx).
		Where("user_id = ? AND thread_id = ?", userID, threadID).
		Delete(&models.Like{})
	if del.Error != nil {
		return false, models.NewInternalError(del.Error)
	}
	if del.RowsAffected > 0 {
		observability.ToggleOperations.WithLabelValues("like", "removed").Inc()
		return false, nil
	}

	like := models.Like{UserID: userID, ThreadID: threadID}
	ins := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "thread_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if ins.Error != nil {
		return false, models.NewInternalError(ins.Error)
	}
	observability.ToggleOperations.WithLabelValues("like", "added").Inc()
	return true, nil
}

func (r *threadRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	defer observability.TrackQuery("insert", "replies")()

	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *threadRepository) RepliesByThread(ctx context.Context, threadID uint) ([]models.Reply, error) {
	defer observability.TrackQuery("select", "replies")()

	var replies []models.Reply
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

func (r *threadRepository) GetReply(ctx context.Context, id uint) (*models.Reply, error) {
	defer observability.TrackQuery("select", "replies")()

	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reply", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &reply, nil
}

func (r *threadRepository) DeleteReply(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "replies")()

	if err := r.db.WithContext(ctx).Delete(&models.Reply{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
