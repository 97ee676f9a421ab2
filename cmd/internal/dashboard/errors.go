package dashboard

import "errors"

var (
	// ErrRoleDenied is returned when the stored role does not match any required role.
	ErrRoleDenied = errors.New("role not permitted")

	// ErrInvalidInput indicates a caller-side validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoToken is returned when a login response carries no usable token.
	ErrNoToken = errors.New("login response carried no token")
)
