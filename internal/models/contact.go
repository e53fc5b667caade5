package models

import "time"

// ContactMessage is a message sent through the storefront contact form.
type ContactMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(150);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null"`
	Subject   string    `json:"subject" gorm:"type:varchar(200)"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	IP        string    `json:"-" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
}
