package password

import (
	"strings"
	"unicode/utf8"
)

var common = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"11111111":    {},
	"letmein1":    {},
}

// Validate applies the length policy and, if enabled, the common-password list.
func (c Config) Validate(pw string) error {
	n := utf8.RuneCountInString(pw)
	switch {
	case n < c.MinLength:
		return ErrTooShort
	case n > c.MaxLength:
		return ErrTooLong
	}
	if c.RejectCommon {
		if _, bad := common[strings.ToLower(strings.TrimSpace(pw))]; bad {
			return ErrCommon
		}
	}
	return nil
}
