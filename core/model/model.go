package model

import (
	"strings"
	"time"
)

// User is an immutable snapshot of a member profile.
type User struct {
	ID          string `json:"_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
	LoginName   string `json:"login_name,omitempty"`
}

// FullName returns "First Last" with surrounding blanks removed.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Ref returns the author reference embedded in comments.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// UserRef identifies a comment author.
type UserRef struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// FullName returns "First Last" with surrounding blanks removed.
func (r UserRef) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Photo is a single uploaded image with its comment tree.
type Photo struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"user_id"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"date_time"`
	Comments  []Comment `json:"comments"`
}

// Comment is a top-level comment or a reply to one.
type Comment struct {
	ID        string    `json:"_id"`
	PhotoID   string    `json:"photo_id,omitempty"`
	Author    UserRef   `json:"user"`
	Text      string    `json:"comment"`
	CreatedAt time.Time `json:"date_time"`
	ParentID  string    `json:"parent_id,omitempty"`
	Replies   []Comment `json:"replies,omitempty"`
}

// IsReply reports whether the comment is attached to a parent.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

// CountComments returns the number of comments on the photo, replies included.
func (p Photo) CountComments() int {
	n := len(p.Comments)
	for _, c := range p.Comments {
		n += len(c.Replies)
	}
	return n
}
