// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"circle/internal/models"
	"circle/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follower-edge operations.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID uint) (*models.Follower, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle removes the edge when it exists, else inserts it and returns the
// created edge. A nil edge with a nil error means the follow was removed.
// The insert uses ON CONFLICT DO NOTHING so a concurrent duplicate resolves
// to the same "following" state instead of a constraint violation.
func (r *followRepository) Toggle(ctx context.Context, followerID, followingID uint) (*models.Follower, error) {
	defer observability.TrackQuery("toggle", "followers")()

	del := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follower{})
	if del.Error != nil {
		return nil, models.NewInternalError(del.Error)
	}
	if del.RowsAffected > 0 {
		observability.ToggleOperations.WithLabelValues("follow", "removed").Inc()
		return nil, nil
	}

	edge := models.Follower{FollowerID: followerID, FollowingID: followingID}
	ins := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).
		Create(&edge)
	if ins.Error != nil {
		return nil, models.NewInternalError(ins.Error)
	}
	observability.ToggleOperations.WithLabelValues("follow", "added").Inc()
	return &edge, nil
}

// Followers returns the users following userID.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	defer observability.TrackQuery("select", "followers")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN followers ON followers.follower_id = users.id").
		Where("followers.following_id = ?", userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Following returns the users userID follows.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	defer observability.TrackQuery("select", "followers")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN followers ON followers.following_id = users.id").
		Where("followers.follower_id = ?", userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follower{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follower{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
