// Package photos is the client's aggregate store for the photos of the user
// being viewed, with their comment trees.
//
// The store holds one user's photos at a time. Loading a different user
// discards the previous entries at once; loading the same user again replaces
// the photo set when the answer arrives. Responses that arrive after the view
// moved on are not applied and the call returns ErrStale.
//
// # Comment Trees
//
// Comments have exactly two levels. A top-level comment sits in the photo's
// Comments slice; a reply sits in its parent's Replies. Every comment is also
// kept in a flat index by id. Server payloads are normalized on the way in
// (see model.NormalizeComments): nested replies move up to their top-level
// ancestor and replies to unknown parents are dropped and logged.
//
// New comments are merged only after the server has stored them, at the tail
// of their sequence. Merging is keyed by id, so a repeated merge is a no-op
// and does not notify subscribers.
//
//	c, err := store.AddComment(ctx, photoID, "Nice shot!", "")
//	reply, err := store.AddComment(ctx, photoID, "Thanks", c.ID)
//
// AddComment validates locally before any request: empty text is a
// client_error, an unknown photo or parent is not_found, and replying to a
// reply is a client_error.
//
// # Snapshots
//
// Readers get immutable Snapshot values, deep copies of the state with a
// Version that grows with every change:
//
//	unsubscribe := store.Subscribe(func(s photos.Snapshot) {
//		render(s.Photos)
//	})
//
// # Comment Index
//
// CommentIndex keeps every known comment by author, updated from each applied
// load and merge. WarmIndex fills it for a list of users in one bounded pass
// so per-author views do not refetch photo lists on each render.
package photos
