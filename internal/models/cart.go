package models

import "time"

// CartItem is one line of a user's server-side cart mirror.
type CartItem struct {
	UserID    string    `json:"-" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"primaryKey;type:varchar(36)"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Position  int       `json:"-" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}
