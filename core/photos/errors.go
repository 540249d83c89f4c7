package photos

import "errors"

var (
	// ErrStale is returned when a response arrived for a view that is no
	// longer current. Nothing was applied.
	ErrStale = errors.New("photos: stale response")
	// ErrNoUser is returned when loading without a user id.
	ErrNoUser = errors.New("photos: user id is required")
	// ErrEmptyComment is returned for comment text that is empty after cleanup.
	ErrEmptyComment = errors.New("photos: comment text is empty")
	// ErrUnknownPhoto is returned when the photo is not in the store.
	ErrUnknownPhoto = errors.New("photos: unknown photo")
	// ErrUnknownParent is returned when the parent comment is not in the store.
	ErrUnknownParent = errors.New("photos: unknown parent comment")
	// ErrNoCommentID is returned when merging a comment without an id.
	ErrNoCommentID = errors.New("photos: comment without id")
	// ErrNestedReply is returned when replying to a reply.
	ErrNestedReply = errors.New("photos: replies cannot be nested")
)
