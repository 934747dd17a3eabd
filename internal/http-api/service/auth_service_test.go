package service

import (
	"testing"
	"time"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/middleware/auth"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(refreshToken *models.RefreshToken) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(tokenString string) (*models.RefreshToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Delete(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret-key-at-least-32-chars-long",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestRegister_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	mockUsers.On("Create", mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register("Ada Lovelace", "ada@example.com", "password123", "")

	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleMember, user.Role) // empty role defaults to member
	assert.NotEmpty(t, user.ID)
	// the stored password is a bcrypt hash that verifies against the original
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, auth.VerifyPassword(user.Password, "password123"))
	mockUsers.AssertExpectations(t)
}

func TestRegister_LibrarianRole(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	mockUsers.On("Create", mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register("Jorge", "jorge@example.com", "password123", models.RoleLibrarian)

	require.NoError(t, err)
	assert.Equal(t, models.RoleLibrarian, user.Role)
}

func TestRegister_InvalidRole(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	user, err := svc.Register("Eve", "eve@example.com", "password123", "admin")

	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Nil(t, user)
	mockUsers.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	mockUsers.On("Create", mock.AnythingOfType("*models.User")).Return(repository.ErrDuplicateEmail)

	user, err := svc.Register("Ada", "ada@example.com", "password123", "")

	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.Nil(t, user)
}

func TestLogin_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)

	stored := &models.User{
		ID:       uuid.New().String(),
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: hashed,
		Role:     models.RoleMember,
	}

	mockUsers.On("FindByEmail", "ada@example.com").Return(stored, nil)
	mockTokens.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	accessToken, refreshToken, user, err := svc.Login("ada@example.com", "password123")

	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.Equal(t, stored.ID, user.ID)

	// the access token round-trips through validation with the same principal
	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, stored.Email, claims.Email)
	assert.Equal(t, models.RoleMember, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)

	stored := &models.User{ID: uuid.New().String(), Email: "ada@example.com", Password: hashed}
	mockUsers.On("FindByEmail", "ada@example.com").Return(stored, nil)

	_, _, _, err = svc.Login("ada@example.com", "wrong-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	mockUsers.On("FindByEmail", "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, _, _, err := svc.Login("nobody@example.com", "password123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshAccessToken_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	user := &models.User{ID: uuid.New().String(), Email: "ada@example.com", Role: models.RoleMember}
	stored := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     "refresh-token-value",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	mockTokens.On("FindByToken", "refresh-token-value").Return(stored, nil)
	mockUsers.On("FindByID", user.ID).Return(user, nil)

	accessToken, err := svc.RefreshAccessToken("refresh-token-value")

	require.NoError(t, err)
	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRefreshAccessToken_Revoked(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	stored := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    uuid.New().String(),
		Token:     "refresh-token-value",
		ExpiresAt: time.Now().Add(time.Hour),
		Revoked:   true,
	}
	mockTokens.On("FindByToken", "refresh-token-value").Return(stored, nil)

	_, err := svc.RefreshAccessToken("refresh-token-value")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken_Expired(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	stored := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    uuid.New().String(),
		Token:     "refresh-token-value",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	mockTokens.On("FindByToken", "refresh-token-value").Return(stored, nil)
	mockTokens.On("Delete", stored.ID).Return(nil)

	_, err := svc.RefreshAccessToken("refresh-token-value")

	assert.ErrorIs(t, err, ErrInvalidToken)
	mockTokens.AssertCalled(t, "Delete", stored.ID)
}

func TestRevokeToken(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	stored := &models.RefreshToken{ID: uuid.New().String(), Token: "refresh-token-value"}
	mockTokens.On("FindByToken", "refresh-token-value").Return(stored, nil)
	mockTokens.On("Revoke", stored.ID).Return(nil)

	err := svc.RevokeToken("refresh-token-value")

	assert.NoError(t, err)
	mockTokens.AssertExpectations(t)
}

func TestValidateToken_Garbage(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(mockUsers, mockTokens, testAuthConfig())

	claims, err := svc.ValidateToken("not-a-jwt")

	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockRefreshTokenRepository)

	issuer := NewAuthService(mockUsers, mockTokens, testAuthConfig())
	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "a-completely-different-32-char-secret!!"
	verifier := NewAuthService(mockUsers, mockTokens, otherCfg)

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New().String(), Email: "ada@example.com", Password: hashed}
	mockUsers.On("FindByEmail", "ada@example.com").Return(stored, nil)
	mockTokens.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	accessToken, _, _, err := issuer.Login("ada@example.com", "password123")
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(accessToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
}
