package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(name, email, password, role string) (*models.User, error) {
	args := m.Called(name, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(email, password string) (string, string, *models.User, error) {
	args := m.Called(email, password)
	if args.Get(2) == nil {
		return "", "", nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*models.User), args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) RevokeToken(refreshToken string) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func newAuthRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAuthHandler(svc, 900).RegisterRoutes(r.Group("/api/auth"))
	return r
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint_Created(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	mockSvc.On("Register", "Ada Lovelace", "ada@example.com", "password123", "").
		Return(&models.User{ID: "uid-1", Name: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleMember}, nil)

	w := postJSON(router, "/api/auth/register",
		`{"name": "Ada Lovelace", "email": "ada@example.com", "password": "password123"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"member"`)
	mockSvc.AssertExpectations(t)
}

func TestRegisterEndpoint_DuplicateEmailIsOpaque(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	mockSvc.On("Register", "Ada", "ada@example.com", "password123", "").
		Return(nil, service.ErrEmailInUse)

	w := postJSON(router, "/api/auth/register",
		`{"name": "Ada", "email": "ada@example.com", "password": "password123"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	// the body never confirms that the email exists
	assert.NotContains(t, w.Body.String(), "email")
}

func TestRegisterEndpoint_ValidationRejectsShortPassword(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	w := postJSON(router, "/api/auth/register",
		`{"name": "Ada", "email": "ada@example.com", "password": "short"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterEndpoint_ValidationRejectsUnknownRole(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	w := postJSON(router, "/api/auth/register",
		`{"name": "Ada", "email": "ada@example.com", "password": "password123", "role": "admin"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginEndpoint_OK(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	mockSvc.On("Login", "ada@example.com", "password123").
		Return("access-token", "refresh-token",
			&models.User{ID: "uid-1", Name: "Ada Lovelace", Role: models.RoleMember}, nil)

	w := postJSON(router, "/api/auth/login",
		`{"email": "ada@example.com", "password": "password123"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
	assert.Equal(t, "uid-1", resp.UserID)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	mockSvc.On("Login", "ada@example.com", "wrong").
		Return("", "", nil, service.ErrInvalidCredentials)

	w := postJSON(router, "/api/auth/login",
		`{"email": "ada@example.com", "password": "wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpoint_OK(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	mockSvc.On("RefreshAccessToken", "refresh-token").Return("new-access-token", nil)

	w := postJSON(router, "/api/auth/refresh", `{"refresh_token": "refresh-token"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new-access-token")
}

func TestRefreshEndpoint_InvalidToken(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	mockSvc.On("RefreshAccessToken", "stale").Return("", service.ErrInvalidToken)

	w := postJSON(router, "/api/auth/refresh", `{"refresh_token": "stale"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndpoint_OK(t *testing.T) {
	mockSvc := new(MockAuthService)
	router := newAuthRouter(mockSvc)

	mockSvc.On("RevokeToken", "refresh-token").Return(nil)

	w := postJSON(router, "/api/auth/logout", `{"refresh_token": "refresh-token"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}
