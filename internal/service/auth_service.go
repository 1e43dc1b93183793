// Package service contains the business logic sitting between handlers and repositories.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"circle/internal/mail"
	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime    = 7 * 24 * time.Hour
	resetTokenExpiry = time.Hour
	// bcryptCost matches the original service's hashing cost for both
	// passwords and reset tokens.
	bcryptCost = 10
)

// AuthService implements login, registration and the password-reset flow.
type AuthService struct {
	userRepo     repository.UserRepository
	threadRepo   repository.ThreadRepository
	mailer       mail.Mailer
	jwtSecret    string
	resetURLBase string
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository, threadRepo repository.ThreadRepository, mailer mail.Mailer, jwtSecret, resetURLBase string) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		threadRepo:   threadRepo,
		mailer:       mailer,
		jwtSecret:    jwtSecret,
		resetURLBase: resetURLBase,
	}
}

// LoginPayload is the assembled login response data.
type LoginPayload struct {
	Token          string
	User           *models.User
	FollowersCount int
	FollowingCount int
	Threads        []*models.Thread
}

// Login verifies the identifier/password pair and assembles the login payload.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginPayload, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", identifier)
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	threads, err := s.threadRepo.ByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &LoginPayload{
		Token:          token,
		User:           user,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
		Threads:        threads,
	}, nil
}

// Register creates a new account. Emails stay unique across soft-deleted
// accounts, so a deleted address can never be reused.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	if email == "" || password == "" || fullName == "" {
		return nil, models.NewValidationError("All fields are required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hashed),
		FullName: fullName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ForgotPassword stores a hashed reset token on the matching account and
// mails the plaintext token. A missing account is NOT an error: the caller
// must answer with the same generic message either way so addresses cannot
// be enumerated.
func (s *AuthService) ForgotPassword(ctx context.Context, identifier string) error {
	if identifier == "" {
		return models.NewValidationError("Email or username is required")
	}

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return models.NewInternalError(err)
	}
	plaintext := hex.EncodeToString(raw)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	hashedStr := string(hashed)
	expires := time.Now().Add(resetTokenExpiry)
	if _, err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"reset_password_token":   hashedStr,
		"reset_password_expires": expires,
	}); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.resetURLBase, plaintext)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to send reset email",
			slog.Any("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return models.NewInternalError(err)
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the password. The
// presented token is bcrypt-compared against every unexpired stored hash so
// concurrent reset requests for different accounts cannot cross-match.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	if token == "" {
		return models.NewValidationError("Invalid or expired token")
	}

	candidates, err := s.userRepo.WithActiveResetTokens(ctx, time.Now())
	if err != nil {
		return err
	}

	var match *models.User
	for i := range candidates {
		u := &candidates[i]
		if u.ResetPasswordToken == nil {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(*u.ResetPasswordToken), []byte(token)) == nil {
			match = u
			break
		}
	}
	if match == nil {
		return models.NewValidationError("Invalid or expired token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	// Clearing both token fields makes the token single-use.
	if _, err := s.userRepo.UpdateFields(ctx, match.ID, map[string]interface{}{
		"password":               string(hashed),
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	}); err != nil {
		return err
	}

	return nil
}

// GenerateToken creates a signed bearer credential for the given user ID.
func (s *AuthService) GenerateToken(userID uint) (string, error) {
	if s.jwtSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "circle-api",
		"aud": "circle-client",
		"exp": now.Add(tokenLifetime).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
