package repositories

import "ticktee/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	CreateWithProfile(user *models.User, profile *models.Profile) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}

// ProfileRepository defines the interface for profile data access.
type ProfileRepository interface {
	GetByID(id string) (*models.Profile, error)
	Update(profile *models.Profile) error
	SetRole(id string, role models.Role) error
}
