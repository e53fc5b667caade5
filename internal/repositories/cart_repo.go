package repositories

import (
	"fmt"
	"time"

	"ticktee/internal/models"

	"gorm.io/gorm"
)

// CartRepository persists the server-side mirror of a user's cart.
type CartRepository interface {
	GetByUser(userID string) ([]models.CartItem, error)
	Replace(userID string, items []models.CartItem) error
	Clear(userID string) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUser returns the user's cart lines in the order they were added.
func (r *GORMCartRepository) GetByUser(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("position ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return items, nil
}

// Replace swaps the whole cart for items.
func (r *GORMCartRepository) Replace(userID string, items []models.CartItem) error {
	now := time.Now()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]models.CartItem, len(items))
		for i, item := range items {
			rows[i] = models.CartItem{
				UserID:    userID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Position:  i,
				UpdatedAt: now,
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save cart for user %s: %w", userID, err)
	}
	return nil
}

// Clear empties the user's cart.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
