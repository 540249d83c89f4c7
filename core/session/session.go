package session

import (
	"context"

	"github.com/dmitrymomot/photoshare/core/api"
	"github.com/dmitrymomot/photoshare/core/model"
)

// State is the authentication state.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Session is an immutable view of the authentication state.
type Session struct {
	State   State
	Token   string
	User    model.User
	Version uint64
}

// IsActive reports whether a user is logged in.
func (s Session) IsActive() bool {
	return s.State == Active
}

// Authenticator is the part of the API the manager needs. *api.Client implements it.
type Authenticator interface {
	SessionStatus(ctx context.Context) (api.SessionStatus, error)
	Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
	Logout(ctx context.Context) error
	User(ctx context.Context, id string) (model.User, error)
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
}

var _ Authenticator = (*api.Client)(nil)
