package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Role is a user's access level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsKnown reports whether r is one of the predefined roles.
func (r Role) IsKnown() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User represents a row in the users table.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialize
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Validate checks the payload. With strictRoles the role must be empty or one
// of the predefined roles; otherwise any value is accepted.
func (r RegisterRequest) Validate(strictRoles bool) error {
	roleRules := []validation.Rule{validation.Length(0, 32)}
	if strictRoles {
		roleRules = append(roleRules, validation.In(RoleUser, RoleAdmin))
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
		validation.Field(&r.Role, roleRules...),
	)
}

// LoginRequest is the JSON body for POST /login. Blank fields are not
// rejected here; they fail the credential check like any other mismatch.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
