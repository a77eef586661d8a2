package errors

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalid     = errors.New("invalid")
	ErrTooMany     = errors.New("too many requests")
	ErrUnavailable = errors.New("unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
