package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/photoshare/core/model"
	"github.com/dmitrymomot/photoshare/core/upload"
)

// SessionStatus is the answer of GET /admin/session.
type SessionStatus struct {
	LoggedIn bool   `json:"logged_in"`
	UserID   string `json:"user_id,omitempty"`
}

// Credentials are sent to POST /admin/login.
type Credentials struct {
	LoginName string `json:"login_name"`
	Password  string `json:"password,omitempty"`
}

// LoginResult is the answer of a successful login.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// NewComment is the body of POST /commentsOfPhoto/:photoId.
type NewComment struct {
	Text     string `json:"comment"`
	ParentID string `json:"parent_id,omitempty"`
}

// SessionStatus asks the server whether the presented token is valid.
func (c *Client) SessionStatus(ctx context.Context) (SessionStatus, error) {
	var out SessionStatus
	err := c.Do(ctx, http.MethodGet, "/admin/session", nil, BodyJSON, &out)
	return out, err
}

// Login exchanges credentials for a token and the user's profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var out LoginResult
	if err := c.Do(ctx, http.MethodPost, "/admin/login", creds, BodyJSON, &out); err != nil {
		return LoginResult{}, err
	}
	if out.Token == "" || out.User.ID == "" {
		return LoginResult{}, &Error{Op: "POST /admin/login", Kind: KindNetwork, Status: http.StatusOK, Message: "login response without token or user"}
	}
	return out, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/admin/logout", nil, BodyJSON, nil)
}

// User fetches one profile.
func (c *Client) User(ctx context.Context, id string) (model.User, error) {
	var out model.User
	err := c.Do(ctx, http.MethodGet, "/user/"+url.PathEscape(id), nil, BodyJSON, &out)
	return out, err
}

// ListUsers fetches the member list.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.Do(ctx, http.MethodGet, "/user/list", nil, BodyJSON, &out)
	return out, err
}

// UpdateUser replaces a profile. The server may answer with {"user": {...}}
// or with the bare user.
func (c *Client) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodPut, "/user/"+url.PathEscape(u.ID), u, BodyJSON, &raw); err != nil {
		return model.User{}, err
	}
	return decodeWrapped[model.User]("PUT /user/:id", raw, "user")
}

// PhotosOfUser fetches a user's photos with their comments.
func (c *Client) PhotosOfUser(ctx context.Context, userID string) ([]model.Photo, error) {
	var out []model.Photo
	err := c.Do(ctx, http.MethodGet, "/photosOfUser/"+url.PathEscape(userID), nil, BodyJSON, &out)
	return out, err
}

// AddComment posts a comment or reply and returns the stored record.
func (c *Client) AddComment(ctx context.Context, photoID string, in NewComment) (model.Comment, error) {
	var out model.Comment
	err := c.Do(ctx, http.MethodPost, "/commentsOfPhoto/"+url.PathEscape(photoID), in, BodyJSON, &out)
	return out, err
}

// UploadPhoto sends f as a new photo of the current user. The server may
// answer with {"photo": {...}} or with the bare photo.
func (c *Client) UploadPhoto(ctx context.Context, f upload.File) (model.Photo, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodPost, "/photos/new", f, BodyMultipart, &raw); err != nil {
		return model.Photo{}, err
	}
	return decodeWrapped[model.Photo]("POST /photos/new", raw, "photo")
}

func decodeWrapped[T any](op string, raw json.RawMessage, key string) (T, error) {
	var zero T
	if len(raw) == 0 {
		return zero, &Error{Op: op, Kind: KindNetwork, Status: http.StatusOK, Message: "empty response"}
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if inner, ok := wrapped[key]; ok {
			raw = inner
		}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, &Error{Op: op, Kind: KindNetwork, Status: http.StatusOK, Message: "malformed response", Err: err}
	}
	return out, nil
}
