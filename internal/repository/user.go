// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"circle/internal/models"
	"circle/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users and profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithEdges(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error)
	SoftDelete(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListActiveExcept(ctx context.Context, excludedIDs []uint) ([]models.User, error)
	UpsertProfile(ctx context.Context, userID uint, bio string) (*models.Profile, error)
	WithActiveResetTokens(ctx context.Context, now time.Time) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDWithEdges(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Followers").
		Preload("Following").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByIdentifier looks a user up by email or username; first match wins.
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Followers").
		Preload("Following").
		Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateFields applies a partial column update and returns the refreshed row.
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	defer observability.TrackQuery("update", "users")()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return nil, models.NewConflictError("Username already in use")
		}
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	return r.GetByID(ctx, id)
}

// SoftDelete flips the isDeleted flag; the row and its history stay in place.
func (r *userRepository) SoftDelete(ctx context.Context, id uint) (*models.User, error) {
	return r.UpdateFields(ctx, id, map[string]interface{}{"is_deleted": true})
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("is_deleted = ?", false).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// ListActiveExcept returns non-deleted users whose ID is not in excludedIDs,
// in stable primary-key order.
func (r *userRepository) ListActiveExcept(ctx context.Context, excludedIDs []uint) ([]models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var users []models.User
	q := r.db.WithContext(ctx).Where("is_deleted = ?", false)
	if len(excludedIDs) > 0 {
		q = q.Where("id NOT IN ?", excludedIDs)
	}
	if err := q.Order("id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// UpsertProfile creates the profile on first write, else updates the bio.
func (r *userRepository) UpsertProfile(ctx context.Context, userID uint, bio string) (*models.Profile, error) {
	defer observability.TrackQuery("upsert", "profiles")()

	profile := models.Profile{UserID: userID, Bio: bio}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio"}),
		}).
		Create(&profile).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

// WithActiveResetTokens returns every user holding a non-null, unexpired
// password-reset token hash.
func (r *userRepository) WithActiveResetTokens(ctx context.Context, now time.Time) ([]models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("reset_password_token IS NOT NULL AND reset_password_expires >= ?", now).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "unique constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
