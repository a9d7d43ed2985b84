package errors

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalid     = errors.New("invalid")
	ErrConflict    = errors.New("conflict")
	ErrInternal    = errors.New("internal")
	ErrUnavailable = errors.New("unavailable")
	ErrInvalidFile = errors.New("invalid file")
	ErrFileTooBig  = errors.New("file too big")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
