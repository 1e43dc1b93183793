package server

import (
	"context"
	"io"
	"time"

	"circle/internal/config"
	"circle/internal/media"
	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDWithEdges(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) ListActiveExcept(ctx context.Context, excludedIDs []uint) ([]models.User, error) {
	args := m.Called(ctx, excludedIDs)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpsertProfile(ctx context.Context, userID uint, bio string) (*models.Profile, error) {
	args := m.Called(ctx, userID, bio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockUserRepository) WithActiveResetTokens(ctx context.Context, now time.Time) ([]models.User, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockThreadRepository is a mock of the ThreadRepository interface
type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) Create(ctx context.Context, thread *models.Thread) error {
	args := m.Called(ctx, thread)
	return args.Error(0)
}

func (m *MockThreadRepository) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MockThreadRepository) List(ctx context.Context, authorID *uint) ([]*models.Thread, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).([]*models.Thread), args.Error(1)
}

func (m *MockThreadRepository) ByAuthor(ctx context.Context, userID uint) ([]*models.Thread, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Thread), args.Error(1)
}

func (m *MockThreadRepository) Update(ctx context.Context, thread *models.Thread) error {
	args := m.Called(ctx, thread)
	return args.Error(0)
}

func (m *MockThreadRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockThreadRepository) ToggleLike(ctx context.Context, userID, threadID uint) (bool, error) {
	args := m.Called(ctx, userID, threadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockThreadRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	args := m.Called(ctx, reply)
	return args.Error(0)
}

func (m *MockThreadRepository) RepliesByThread(ctx context.Context, threadID uint) ([]models.Reply, error) {
	args := m.Called(ctx, threadID)
	return args.Get(0).([]models.Reply), args.Error(1)
}

func (m *MockThreadRepository) GetReply(ctx context.Context, id uint) (*models.Reply, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reply), args.Error(1)
}

func (m *MockThreadRepository) DeleteReply(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Toggle(ctx context.Context, followerID, followingID uint) (*models.Follower, error) {
	args := m.Called(ctx, followerID, followingID)
	if edge := args.Get(0); edge != nil {
		return edge.(*models.Follower), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFollowRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockFollowRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uint), args.Error(1)
}

// stubMailer swallows outbound mail and records recipients.
type stubMailer struct {
	sent []string
	err  error
}

func (s *stubMailer) SendPasswordReset(_ context.Context, to, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

// stubMediaStore returns deterministic upload results.
type stubMediaStore struct{}

func (stubMediaStore) Upload(_ context.Context, _ io.Reader, folder, fileName string) (*media.UploadResult, error) {
	return &media.UploadResult{
		URL:      "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + fileName,
		FileName: fileName,
		PublicID: folder + "/" + fileName,
	}, nil
}

func (stubMediaStore) Destroy(context.Context, string) error { return nil }

type testDeps struct {
	userRepo   *MockUserRepository
	threadRepo *MockThreadRepository
	followRepo *MockFollowRepository
	mailer     *stubMailer
}

// newTestServer builds a Server on mock repositories and registers its
// routes on a fresh app. Auth is replaced by a middleware pinning the
// caller to the given user ID.
func newTestServer(authedUserID uint) (*fiber.App, *Server, *testDeps) {
	deps := &testDeps{
		userRepo:   new(MockUserRepository),
		threadRepo: new(MockThreadRepository),
		followRepo: new(MockFollowRepository),
		mailer:     &stubMailer{},
	}

	cfg := &config.Config{JWTSecret: "test_secret", ResetURLBase: "http://localhost:5173"}
	s := &Server{
		config:     cfg,
		userRepo:   deps.userRepo,
		threadRepo: deps.threadRepo,
		followRepo: deps.followRepo,
		mailer:     deps.mailer,
		mediaStore: stubMediaStore{},
	}
	s.authService = service.NewAuthService(deps.userRepo, deps.threadRepo, deps.mailer, cfg.JWTSecret, cfg.ResetURLBase)
	s.threadService = service.NewThreadService(deps.threadRepo, stubMediaStore{})
	s.userService = service.NewUserService(deps.userRepo, deps.followRepo, stubMediaStore{})

	app := fiber.New()
	if authedUserID != 0 {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", authedUserID)
			return c.Next()
		})
	}
	registerTestRoutes(app, s)
	return app, s, deps
}

// registerTestRoutes mirrors SetupRoutes without the auth middleware.
func registerTestRoutes(app *fiber.App, s *Server) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", s.Login)
	auth.Post("/register", s.Register)
	auth.Post("/forgot-password", s.ForgotPassword)
	auth.Post("/reset-password", s.ResetPassword)
	auth.Get("/me", s.Me)

	api.Get("/threads", s.GetThreads)
	threads := api.Group("/threads")
	threads.Post("/", s.CreateThread)
	threads.Post("/:threadId/like", s.ToggleLike)
	threads.Post("/:threadId/replies", s.CreateReply)
	threads.Get("/:threadId/replies", s.GetReplies)
	threads.Delete("/:threadId/replies/:replyId", s.DeleteReply)
	threads.Get("/:id", s.GetThread)

	thread := api.Group("/thread")
	thread.Put("/:id", s.UpdateThread)
	thread.Delete("/:id", s.DeleteThread)

	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Post("/:userId/follow", s.ToggleFollow)
	users.Get("/:userId/followers", s.GetFollowers)
	users.Get("/:userId/following", s.GetFollowing)
	users.Get("/:userId/suggest-users", s.SuggestUsers)
	users.Get("/:userId", s.GetUser)
	users.Put("/:userId", s.UpdateUser)
	users.Patch("/:userId", s.PatchUser)
	users.Delete("/:userId", s.DeleteUser)
}

var _ repository.UserRepository = (*MockUserRepository)(nil)
var _ repository.ThreadRepository = (*MockThreadRepository)(nil)
var _ repository.FollowRepository = (*MockFollowRepository)(nil)
