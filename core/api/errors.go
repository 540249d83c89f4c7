package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call.
type Kind string

const (
	KindNetwork  Kind = "network_error"
	KindAuth     Kind = "auth_error"
	KindClient   Kind = "client_error"
	KindNotFound Kind = "not_found"
)

var (
	ErrNetwork  = errors.New("network error")
	ErrAuth     = errors.New("authentication required")
	ErrClient   = errors.New("request rejected")
	ErrNotFound = errors.New("not found")
)

// Error is a classified API failure.
type Error struct {
	Op        string // "GET /user/:id"
	Kind      Kind
	Status    int // 0 when no response was received
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.sentinel().Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindAuth:
		return ErrAuth
	case KindClient:
		return ErrClient
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrNetwork
	}
}

// KindOf returns the classification of err, or "" if err is not an API error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrClient):
		return KindClient
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	}
	return ""
}

// NewError builds a classified error without a response. Callers use it to
// report failures detected before a request is sent.
func NewError(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Message: msg}
}

// kindForStatus maps a non-2xx status to its kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindClient
	default:
		return KindNetwork
	}
}
