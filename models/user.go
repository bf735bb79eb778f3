package models

import (
	"strings"
	"time"
)

// UserRole defines the permission tiers in the system
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleStaff     UserRole = "staff"
	RoleSuperuser UserRole = "superuser"
)

// IsStaff reports whether the role carries staff privileges.
// Superusers implicitly have everything staff have.
func (r UserRole) IsStaff() bool {
	return r == RoleStaff || r == RoleSuperuser
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'user'"`
	Bookings     []Booking `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName returns "First Last", falling back to the email when both
// name parts are empty.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
