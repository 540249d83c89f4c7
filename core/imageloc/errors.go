package imageloc

import "errors"

var (
	ErrInvalidBaseURL = errors.New("imageloc: invalid base url")
	ErrEmptyName      = errors.New("imageloc: empty file name")
	ErrUnavailable    = errors.New("imageloc: image unavailable")
	ErrNotImage       = errors.New("imageloc: response is not an image")
	ErrTooLarge       = errors.New("imageloc: image too large")
)
