package interceptor

import (
	"errors"
	"strconv"
)

var (
	// ErrAlreadyInstalled is returned when Install runs twice for one session context.
	ErrAlreadyInstalled = errors.New("auth interceptor already installed")

	// ErrInvalidAPIBase is returned when the configured API base is not an absolute http(s) URL.
	ErrInvalidAPIBase = errors.New("invalid api base url")
)

var errNoRefreshToken = errors.New("refresh response carried no access token")

type refreshStatusError struct {
	status int
}

func (e *refreshStatusError) Error() string {
	return "refresh rejected with status " + strconv.Itoa(e.status)
}
