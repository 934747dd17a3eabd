package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles form a closed enumeration. Librarians hold the elevated
// permissions (catalog and borrowing management), members only view.
const (
	RoleMember    = "member"
	RoleLibrarian = "librarian"
)

// ValidRole reports whether role is part of the enumeration.
func ValidRole(role string) bool {
	return role == RoleMember || role == RoleLibrarian
}

type User struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"column:password_hash;not null" json:"-"` // Not shown in JSON
	Role      string     `gorm:"default:'member';not null" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// If the ID is not already set, generate a new one.
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}
