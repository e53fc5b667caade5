package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(users *MockUserRepository, profiles *MockProfileRepository) *services.AuthService {
	return services.NewAuthService(users, profiles, testJWTSecret, time.Hour, quietLogger())
}

func TestAuthService_RegisterUser(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	authService := newAuthService(users, profiles)

	in := services.RegisterInput{
		Email:    "  Test@Example.com ",
		Password: "password123",
		FullName: "Ayesha Khan",
		Phone:    "03001234567",
	}

	users.On("CreateWithProfile", mock.AnythingOfType("*models.User"), mock.AnythingOfType("*models.Profile")).Return(nil).Once()

	user, profile, err := authService.RegisterUser(in)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	assert.Equal(t, "Ayesha Khan", profile.FullName)
	assert.Equal(t, models.RoleCustomer, profile.Role)
	users.AssertExpectations(t)

	// Test email already registered
	users.On("CreateWithProfile", mock.Anything, mock.Anything).
		Return(fmt.Errorf("email test@example.com: %w", repositories.ErrDuplicate)).Once()
	_, _, err = authService.RegisterUser(in)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.Contains(t, err.Error(), "email 'test@example.com'")
	users.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	users := new(MockUserRepository)
	authService := newAuthService(users, new(MockProfileRepository))

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:           "user-123",
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
	}

	// Test successful login
	users.On("GetByEmail", user.Email).Return(user, nil).Once()
	session, err := authService.LoginUser(user.Email, "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	parsedToken, err := jwt.Parse(session.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])

	// Test invalid credentials (wrong password)
	users.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, err = authService.LoginUser(user.Email, "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	users.On("GetByEmail", "nobody@example.com").Return(nil, fmt.Errorf("user: %w", repositories.ErrNotFound)).Once()
	_, err = authService.LoginUser("nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	users.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository), new(MockProfileRepository))

	token, _, err := authService.IssueToken("user-123", "test@example.com")
	require.NoError(t, err)

	// Test valid token
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.False(t, authService.NeedsRefresh(claims))

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test token signed with another secret
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	foreignString, _ := foreign.SignedString([]byte("other_secret"))
	_, err = authService.ValidateToken(foreignString)
	assert.Error(t, err)

	// Test expired token
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredString)
	assert.Error(t, err)

	// Test token without a user
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	anonymousString, _ := anonymous.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(anonymousString)
	assert.Error(t, err)
}

func TestAuthService_NeedsRefresh(t *testing.T) {
	authService := newAuthService(new(MockUserRepository), new(MockProfileRepository))

	fresh := jwt.MapClaims{"exp": float64(time.Now().Add(50 * time.Minute).Unix())}
	stale := jwt.MapClaims{"exp": float64(time.Now().Add(10 * time.Minute).Unix())}

	assert.False(t, authService.NeedsRefresh(fresh))
	assert.True(t, authService.NeedsRefresh(stale))
	assert.False(t, authService.NeedsRefresh(jwt.MapClaims{}))
}

func TestAuthService_IsAdmin(t *testing.T) {
	profiles := new(MockProfileRepository)
	authService := newAuthService(new(MockUserRepository), profiles)

	profiles.On("GetByID", "admin-1").Return(&models.Profile{ID: "admin-1", Role: models.RoleAdmin}, nil).Once()
	profiles.On("GetByID", "cust-1").Return(&models.Profile{ID: "cust-1", Role: models.RoleCustomer}, nil).Once()
	profiles.On("GetByID", "ghost").Return(nil, fmt.Errorf("profile: %w", repositories.ErrNotFound)).Once()
	profiles.On("GetByID", "broken").Return(nil, errors.New("connection refused")).Once()

	ok, err := authService.IsAdmin("admin-1")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = authService.IsAdmin("cust-1")
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = authService.IsAdmin("ghost")
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = authService.IsAdmin("broken")
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = authService.IsAdmin("")
	assert.NoError(t, err)
	assert.False(t, ok)
	profiles.AssertExpectations(t)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	authService := newAuthService(users, profiles)

	// Existing account is promoted
	users.On("GetByEmail", "owner@example.com").Return(&models.User{ID: "u-1", Email: "owner@example.com"}, nil).Once()
	profiles.On("SetRole", "u-1", models.RoleAdmin).Return(nil).Once()
	assert.NoError(t, authService.EnsureAdmin("owner@example.com", ""))

	// Missing account is created as admin
	users.On("GetByEmail", "new@example.com").Return(nil, repositories.ErrNotFound).Once()
	users.On("CreateWithProfile", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.Role == models.RoleAdmin
	})).Return(nil).Once()
	assert.NoError(t, authService.EnsureAdmin("new@example.com", "s3cret-pass"))

	// Missing account without a password cannot be created
	users.On("GetByEmail", "nopass@example.com").Return(nil, repositories.ErrNotFound).Once()
	assert.ErrorIs(t, authService.EnsureAdmin("nopass@example.com", ""), services.ErrInvalidInput)

	users.AssertExpectations(t)
	profiles.AssertExpectations(t)
}
