package repositories

import (
	"ticktee/internal/models"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Category    models.Category
	Brand       string
	Query       string
	InStockOnly bool
	Offset      int
	Limit       int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(filter ProductFilter) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
	GetByIDs(ids []string) (map[string]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	CountLowStock(threshold int) (int64, error)
}
