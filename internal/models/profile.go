package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a stored role to a Role. An empty value is a customer;
// anything else unrecognized is an error.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unrecognized role %q", s)
}

// Scan implements sql.Scanner.
func (r *Role) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		raw = ""
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", value)
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	parsed, err := ParseRole(string(r))
	if err != nil {
		return nil, err
	}
	return string(parsed), nil
}

// Profile holds the contact details and role of a user. ID mirrors User.ID.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FullName  string    `json:"full_name" gorm:"type:varchar(150)"`
	Email     string    `json:"email" gorm:"type:varchar(255)"`
	Phone     string    `json:"phone" gorm:"type:varchar(30)"`
	Address   string    `json:"address" gorm:"type:text"`
	City      string    `json:"city" gorm:"type:varchar(100)"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:customer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role. A nil profile is not an admin.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
