package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is one of the fixed catalog sections.
type Category string

const (
	CategoryMen    Category = "men"
	CategoryWomen  Category = "women"
	CategoryUnisex Category = "unisex"
	CategorySmart  Category = "smart"
)

// Categories lists every catalog category in display order.
var Categories = []Category{CategoryMen, CategoryWomen, CategoryUnisex, CategorySmart}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a watch in the catalog.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string         `json:"name" gorm:"type:varchar(150);not null"`
	Brand       string         `json:"brand" gorm:"type:varchar(100);index"`
	Price       float64        `json:"price" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	Images      []string       `json:"images" gorm:"serializer:json"` // first entry is the primary image
	Stock       int            `json:"stock" gorm:"not null;default:0"`
	Category    Category       `json:"category" gorm:"type:varchar(20);index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}
