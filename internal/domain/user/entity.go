package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role represents user role in the system
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// NormalizeEmail is the stored form of an email address, used for lookups too
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidSignupRole reports whether role may be chosen at registration
func IsValidSignupRole(role string) bool {
	return role == string(RoleStudent) || role == string(RoleInstructor)
}

// IsValidRole reports whether role names one of the three account roles
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User represents a user account
type User struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	FirstName    string          `db:"first_name" json:"firstName"`
	LastName     string          `db:"last_name" json:"lastName"`
	Role         Role            `db:"role" json:"role"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	Bio          string          `db:"bio" json:"bio"`
	Phone        *string         `db:"phone" json:"phone,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsInstructor returns true if user can author courses
func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}

// ListFilter narrows the admin user listing
type ListFilter struct {
	Role   *Role
	Search string
}

// Profile holds the self-service profile fields
type Profile struct {
	FirstName string
	LastName  string
	Phone     *string
	Bio       string
}
