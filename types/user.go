package types

import (
	"fmt"
	"time"
)

// Role is a closed enumeration of authorization levels. Roles are flat and
// independent: holding ADMINISTRATOR does not imply any other role.
type Role string

const (
	RoleAdministrator     Role = "ADMINISTRATOR"
	RoleToolAdministrator Role = "TOOL_ADMINISTRATOR"
	RoleTeacher           Role = "TEACHER"
	RoleStudent           Role = "STUDENT"
)

// AllRoles lists every role in the system, in declaration order.
func AllRoles() []Role {
	return []Role{RoleAdministrator, RoleToolAdministrator, RoleTeacher, RoleStudent}
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdministrator, RoleToolAdministrator, RoleTeacher, RoleStudent:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// User represents an account in the system.
// It contains identity, contact, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Name is the user's first or display name.
	Name string `json:"name" db:"name"`

	// LastName is the user's last name.
	LastName string `json:"last_name" db:"last_name"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address.
	Email string `json:"email" db:"email"`

	// Phone is the user's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Status indicates whether the account is active. Deleting a user
	// flips this to false; rows are never physically removed.
	Status bool `json:"status" db:"status"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// CreatedBy is the id of the actor that created the account.
	CreatedBy int64 `json:"created_by" db:"created_by"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// UpdatedBy is the id of the actor that last updated the account.
	UpdatedBy int64 `json:"updated_by" db:"updated_by"`
}

// UserRole binds one user to one role. Role sets are replaced wholesale on
// update rather than diffed.
type UserRole struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	CreatedBy int64     `json:"created_by" db:"created_by"`
}
