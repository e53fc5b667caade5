package services

import (
	"strings"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
)

// ProfileInput is the customer-editable part of a profile.
type ProfileInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=30"`
	Address  string `json:"address" validate:"omitempty,max=500"`
	City     string `json:"city" validate:"omitempty,max=100"`
}

// ProfileService reads and edits customer profiles.
type ProfileService struct {
	profiles repositories.ProfileRepository
	orders   repositories.OrderRepository
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles repositories.ProfileRepository, orders repositories.OrderRepository) *ProfileService {
	return &ProfileService{profiles: profiles, orders: orders}
}

// Get returns the user's profile.
func (s *ProfileService) Get(userID string) (*models.Profile, error) {
	return s.profiles.GetByID(userID)
}

// Update changes the user's contact details.
func (s *ProfileService) Update(userID string, in ProfileInput) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(userID)
	if err != nil {
		return nil, err
	}
	profile.FullName = strings.TrimSpace(in.FullName)
	profile.Phone = strings.TrimSpace(in.Phone)
	profile.Address = strings.TrimSpace(in.Address)
	profile.City = strings.TrimSpace(in.City)
	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Stats summarizes the user's orders.
func (s *ProfileService) Stats(userID string) (*repositories.OrderStats, error) {
	return s.orders.UserStats(userID)
}
