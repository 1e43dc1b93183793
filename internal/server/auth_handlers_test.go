package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"circle/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(deps *testDeps)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "Success",
			body: map[string]string{
				"email":    "new@example.com",
				"password": "Password123!",
				"fullName": "New User",
			},
			mockSetup: func(deps *testDeps) {
				deps.userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
				deps.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "User registered",
		},
		{
			// Sign-up has no length or format rules beyond presence.
			name: "Short Password Accepted",
			body: map[string]string{
				"email":    "pw@example.com",
				"password": "pw",
				"fullName": "P W",
			},
			mockSetup: func(deps *testDeps) {
				deps.userRepo.On("GetByEmail", mock.Anything, "pw@example.com").Return(nil, nil)
				deps.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "User registered",
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"email":    "exists@example.com",
				"password": "Password123!",
				"fullName": "New User",
			},
			mockSetup: func(deps *testDeps) {
				deps.userRepo.On("GetByEmail", mock.Anything, "exists@example.com").
					Return(&models.User{ID: 1, Email: "exists@example.com"}, nil)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "Email already in use",
		},
		{
			name:           "Missing Fields",
			body:           map[string]string{"email": "new@example.com"},
			mockSetup:      func(*testDeps) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "All fields are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, deps := newTestServer(0)
			tt.mockSetup(deps)

			resp := postJSON(t, app, "/api/v1/auth/register", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, tt.expectedMsg, body["message"])
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: 1, Email: "a@x.com", FullName: "A", Password: string(hashed)}

	t.Run("Unknown User", func(t *testing.T) {
		app, _, deps := newTestServer(0)
		deps.userRepo.On("GetByIdentifier", mock.Anything, "ghost@x.com").Return(nil, nil)

		resp := postJSON(t, app, "/api/v1/auth/login", map[string]string{
			"emailOrUsername": "ghost@x.com",
			"password":        "whatever",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "User not found", decodeBody(t, resp)["message"])
	})

	t.Run("Wrong Password", func(t *testing.T) {
		app, _, deps := newTestServer(0)
		deps.userRepo.On("GetByIdentifier", mock.Anything, "a@x.com").Return(user, nil)

		resp := postJSON(t, app, "/api/v1/auth/login", map[string]string{
			"emailOrUsername": "a@x.com",
			"password":        "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials", decodeBody(t, resp)["message"])
	})

	t.Run("Success", func(t *testing.T) {
		app, _, deps := newTestServer(0)
		deps.userRepo.On("GetByIdentifier", mock.Anything, "a@x.com").Return(user, nil)
		deps.threadRepo.On("ByAuthor", mock.Anything, uint(1)).Return([]*models.Thread{}, nil)

		resp := postJSON(t, app, "/api/v1/auth/login", map[string]string{
			"emailOrUsername": "a@x.com",
			"password":        "Password123!",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Login successful", body["message"])
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["token"])
		userBody, ok := data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "a@x.com", userBody["email"])
		// Password hash must never leak.
		_, hasPassword := userBody["password"]
		assert.False(t, hasPassword)
	})
}

func TestForgotPasswordEndpoint_GenericResponse(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@x.com", Password: "hash"}

	app, _, deps := newTestServer(0)
	deps.userRepo.On("GetByIdentifier", mock.Anything, "a@x.com").Return(user, nil)
	deps.userRepo.On("UpdateFields", mock.Anything, uint(1), mock.Anything).Return(user, nil)
	deps.userRepo.On("GetByIdentifier", mock.Anything, "ghost@x.com").Return(nil, nil)

	known := postJSON(t, app, "/api/v1/auth/forgot-password", map[string]string{"emailOrUsername": "a@x.com"})
	unknown := postJSON(t, app, "/api/v1/auth/forgot-password", map[string]string{"emailOrUsername": "ghost@x.com"})

	// An attacker probing identifiers sees the exact same response.
	assert.Equal(t, http.StatusOK, known.StatusCode)
	assert.Equal(t, http.StatusOK, unknown.StatusCode)
	assert.Equal(t, decodeBody(t, known), decodeBody(t, unknown))

	assert.Equal(t, []string{"a@x.com"}, deps.mailer.sent)
}

func TestResetPasswordEndpoint(t *testing.T) {
	t.Run("Short Password", func(t *testing.T) {
		app, _, _ := newTestServer(0)
		resp := postJSON(t, app, "/api/v1/auth/reset-password", map[string]string{
			"token":    "some-token",
			"password": "abc",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		app, _, deps := newTestServer(0)
		deps.userRepo.On("WithActiveResetTokens", mock.Anything, mock.Anything).Return([]models.User{}, nil)

		resp := postJSON(t, app, "/api/v1/auth/reset-password", map[string]string{
			"token":    "bogus",
			"password": "longenough",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid or expired token", decodeBody(t, resp)["message"])
	})
}

func TestMeEndpoint(t *testing.T) {
	app, _, deps := newTestServer(1)
	deps.userRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Email: "a@x.com"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	resp := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "User data retrieved successfully", body["message"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", data["email"])
}
