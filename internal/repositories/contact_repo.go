package repositories

import (
	"fmt"

	"ticktee/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	Create(msg *models.ContactMessage) error
}

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{db: db}
}

// Create stores a contact message.
func (r *GORMContactRepository) Create(msg *models.ContactMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to store contact message: %w", err)
	}
	return nil
}
