package password

import "errors"

var (
	ErrTooShort    = errors.New("password too short")
	ErrTooLong     = errors.New("password too long")
	ErrCommon      = errors.New("password too common")
	ErrInvalidHash = errors.New("invalid password hash")
)
