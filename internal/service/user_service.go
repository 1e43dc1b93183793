package service

import (
	"context"
	"sort"

	"circle/internal/media"
	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/validation"
)

// UserService implements profile management, follows and suggestions.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	media      media.Store
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, mediaStore media.Store) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo, media: mediaStore}
}

// ListUsers returns all active users with their profiles.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// GetUser returns a user with profile and follow edges preloaded.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByIDWithEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserInput carries the full-update fields for a user.
type UpdateUserInput struct {
	FullName       string
	Username       string
	Bio            string
	ProfilePicture string
	Avatar         *FileInput
}

// UpdateUser applies a full profile update, uploading a new avatar when one
// is attached and upserting the bio.
func (s *UserService) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Username != "" {
		if err := validation.ValidateUsername(input.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		username := input.Username
		user.Username = &username
	}
	if input.ProfilePicture != "" {
		picture := input.ProfilePicture
		user.ProfilePicture = &picture
	}

	if input.Avatar != nil {
		result, err := s.media.Upload(ctx, input.Avatar.Reader, profileMediaFolder, input.Avatar.FileName)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.ProfilePicture = &result.URL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.Bio != "" {
		if _, err := s.userRepo.UpsertProfile(ctx, id, input.Bio); err != nil {
			return nil, err
		}
	}

	return s.userRepo.GetByIDWithEdges(ctx, id)
}

// patchableFields maps accepted wire keys to their columns. Anything else in
// a PATCH body is dropped.
var patchableFields = map[string]string{
	"fullName":       "full_name",
	"username":       "username",
	"profilePicture": "profile_picture",
}

// PatchUser applies a partial update of whitelisted fields.
func (s *UserService) PatchUser(ctx context.Context, id uint, body map[string]interface{}) (*models.User, error) {
	fields := make(map[string]interface{})
	for key, column := range patchableFields {
		if value, ok := body[key]; ok {
			fields[column] = value
		}
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("No updatable fields provided")
	}

	if raw, ok := fields["username"]; ok {
		username, isString := raw.(string)
		if !isString {
			return nil, models.NewValidationError("Username must be a string")
		}
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	return s.userRepo.UpdateFields(ctx, id, fields)
}

// DeleteUser soft-deletes an account. Its threads and replies remain visible
// with the author still attached.
func (s *UserService) DeleteUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.SoftDelete(ctx, id)
}

// ToggleFollow flips the caller's follow edge toward the target. It returns
// the created edge when the call resulted in a follow, nil on an unfollow.
func (s *UserService) ToggleFollow(ctx context.Context, callerID, targetID uint) (*models.Follower, error) {
	if callerID == targetID {
		return nil, models.NewValidationError("You cannot follow/unfollow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	return s.followRepo.Toggle(ctx, callerID, targetID)
}

// Followers lists the users following the given user.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID)
}

// Following lists the users the given user follows.
func (s *UserService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID)
}

// SuggestUsers returns active accounts the caller does not yet follow,
// ranked so that people already following the caller come first. The sort is
// stable, keeping the repository's ID order within each group.
func (s *UserService) SuggestUsers(ctx context.Context, callerID uint) ([]models.User, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}
	followerIDs, err := s.followRepo.FollowerIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}

	excluded := append([]uint{callerID}, followingIDs...)
	candidates, err := s.userRepo.ListActiveExcept(ctx, excluded)
	if err != nil {
		return nil, err
	}

	followsCaller := make(map[uint]bool, len(followerIDs))
	for _, id := range followerIDs {
		followsCaller[id] = true
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return followsCaller[candidates[i].ID] && !followsCaller[candidates[j].ID]
	})

	return candidates, nil
}
