package services

import "errors"

// Domain validation errors surfaced by the user and auth services. The HTTP
// boundary maps each to a fixed status and a user-facing message.
var (
	// ErrBadCredentials covers both unknown-username and wrong-password
	// login failures; callers cannot distinguish the two.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidPassword is returned when a password or its confirmation
	// is blank or the two do not match.
	ErrInvalidPassword = errors.New("passwords don't match")

	// ErrInvalidRoleAssignment is returned when the role list is missing
	// or combines STUDENT with any other role.
	ErrInvalidRoleAssignment = errors.New("invalid role assignment")

	// ErrInvalidSearchColumn is returned when a listing names a column
	// outside the searchable/sortable whitelist.
	ErrInvalidSearchColumn = errors.New("invalid search column")
)
