package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ticktee/internal/models"
	"ticktee/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which JWT is valid
	log         logrus.FieldLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, profileRepo repositories.ProfileRepository, jwtSecret string, tokenDuration time.Duration, log logrus.FieldLogger) *AuthService {
	if tokenDuration <= 0 {
		tokenDuration = 7 * 24 * time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  tokenDuration,
		log:         log,
	}
}

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=30"`
}

// Session is an issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// RegisterUser registers a new customer, hashing the password.
func (s *AuthService) RegisterUser(in RegisterInput) (*models.User, *models.Profile, error) {
	return s.register(in, models.RoleCustomer)
}

func (s *AuthService) register(in RegisterInput, role models.Role) (*models.User, *models.Profile, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hashedPassword),
	}
	profile := &models.Profile{
		FullName: strings.TrimSpace(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
		Role:     role,
	}
	if err := s.userRepo.CreateWithProfile(user, profile); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, fmt.Errorf("email '%s': %w", user.Email, ErrEmailTaken)
		}
		return nil, nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, profile, nil
}

// LoginUser authenticates a user and returns a session token if successful.
func (s *AuthService) LoginUser(email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.log.WithError(err).Error("failed to look up user during login")
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// IssueToken signs a session token for the user.
func (s *AuthService) IssueToken(userID, email string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.tokenDurat)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, exp, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if id, _ := claims["user_id"].(string); id == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	return claims, nil
}

// NeedsRefresh reports whether a valid token is in the last quarter of its lifetime.
func (s *AuthService) NeedsRefresh(claims jwt.MapClaims) bool {
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	left := time.Until(time.Unix(int64(exp), 0))
	return left < s.tokenDurat/4
}

// IsAdmin fetches the user's profile and reports whether its role is admin.
// Any failure counts as not admin.
func (s *AuthService) IsAdmin(userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	profile, err := s.profileRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return profile.IsAdmin(), nil
}

// EnsureAdmin creates an admin account for email, or promotes the existing one.
func (s *AuthService) EnsureAdmin(email, password string) error {
	user, err := s.userRepo.GetByEmail(email)
	switch {
	case err == nil:
		if err := s.profileRepo.SetRole(user.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote %s: %w", email, err)
		}
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		if password == "" {
			return fmt.Errorf("admin %s does not exist and no password was given: %w", email, ErrInvalidInput)
		}
		_, _, err := s.register(RegisterInput{Email: email, Password: password, FullName: "Administrator"}, models.RoleAdmin)
		return err
	default:
		return err
	}
}
