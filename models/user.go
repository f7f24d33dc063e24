package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRole decides who may modify entries owned by someone else
type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

// UserRoleNames maps user roles to readable names
var UserRoleNames = map[UserRole]string{
	UserRoleMember: "Member",
	UserRoleAdmin:  "Administrator",
}

// User is a person who logs time
type User struct {
	ID         int64               `json:"id" db:"id"`
	Email      string              `json:"email" db:"email"`
	Name       string              `json:"name" db:"name"`
	Role       UserRole            `json:"role" db:"role"`
	HourlyRate decimal.NullDecimal `json:"hourly_rate" db:"hourly_rate"` // current rate
	Active     bool                `json:"active" db:"active"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user has the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// RoleName returns the readable name for the user role
func (u *User) RoleName() string {
	if name, ok := UserRoleNames[u.Role]; ok {
		return name
	}
	return "Unknown"
}

// CanModify reports whether the user may change the given entry
func (u *User) CanModify(entry *TimeLogEntry) bool {
	return u.IsAdmin() || entry.UserID == u.ID
}

// UserForm represents request data for creating a user
type UserForm struct {
	Email      string              `json:"email"`
	Name       string              `json:"name"`
	Role       UserRole            `json:"role"`
	HourlyRate decimal.NullDecimal `json:"hourly_rate"`
}

// Validate validates the user form data
func (f *UserForm) Validate() []string {
	var errors []string

	if f.Name == "" {
		errors = append(errors, "Name is required")
	}

	if len(f.Name) > 100 {
		errors = append(errors, "Name must be less than 100 characters")
	}

	if f.Email == "" {
		errors = append(errors, "Email is required")
	} else if len(f.Email) > 255 {
		errors = append(errors, "Email must be less than 255 characters")
	} else if !isValidEmail(f.Email) {
		errors = append(errors, "Email format is invalid")
	}

	if f.Role != "" {
		if _, ok := UserRoleNames[f.Role]; !ok {
			errors = append(errors, "Role is invalid")
		}
	}

	if f.HourlyRate.Valid && f.HourlyRate.Decimal.IsNegative() {
		errors = append(errors, "Hourly rate must not be negative")
	}

	return errors
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	// Simple validation: must contain @ and at least one dot after @
	atIndex := -1
	for i, char := range email {
		if char == '@' {
			if atIndex != -1 {
				return false // Multiple @ symbols
			}
			atIndex = i
		}
	}

	if atIndex == -1 || atIndex == 0 || atIndex == len(email)-1 {
		return false // No @, or @ at start/end
	}

	for i := atIndex + 1; i < len(email); i++ {
		if email[i] == '.' && i < len(email)-1 {
			return true
		}
	}

	return false
}
