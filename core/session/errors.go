package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an empty login name or
	// when the server rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned by operations that need an active session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when updating a profile other than the current user's.
	ErrForbidden = errors.New("profile belongs to another user")
	// ErrSessionChanged is returned when the session changed while a request was in flight.
	ErrSessionChanged = errors.New("session changed during request")
	// ErrPersist wraps failures writing to the key-value store.
	ErrPersist = errors.New("failed to persist session")
)
