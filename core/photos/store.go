package photos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/photoshare/core/api"
	"github.com/dmitrymomot/photoshare/core/logger"
	"github.com/dmitrymomot/photoshare/core/model"
	"github.com/dmitrymomot/photoshare/core/sanitizer"
	"github.com/dmitrymomot/photoshare/core/upload"
	"github.com/dmitrymomot/photoshare/pkg/async"
	"github.com/dmitrymomot/photoshare/pkg/broadcast"
)

const opAddComment = "POST /commentsOfPhoto/:id"

// Backend is the part of the API the store needs. *api.Client implements it.
type Backend interface {
	PhotosOfUser(ctx context.Context, userID string) ([]model.Photo, error)
	User(ctx context.Context, id string) (model.User, error)
	AddComment(ctx context.Context, photoID string, in api.NewComment) (model.Comment, error)
	UploadPhoto(ctx context.Context, f upload.File) (model.Photo, error)
}

var _ Backend = (*api.Client)(nil)

// Snapshot is an immutable copy of the store.
type Snapshot struct {
	UserID  string
	Owner   model.User
	Photos  []model.Photo
	Loading bool
	Err     error // last load failure for UserID, nil after a successful load
	Version uint64
}

// PhotoIDs returns the ids of the photos in order.
func (s Snapshot) PhotoIDs() []string {
	ids := make([]string, len(s.Photos))
	for i, p := range s.Photos {
		ids[i] = p.ID
	}
	return ids
}

// Store holds the viewed user's photos. Create it with New.
type Store struct {
	api              Backend
	logger           *slog.Logger
	hub              *broadcast.Hub[Snapshot]
	index            *CommentIndex
	indexConcurrency int
	maxCommentLen    int

	mu       sync.RWMutex
	userID   string
	owner    model.User
	photos   []model.Photo
	photoPos map[string]int
	comments map[string]model.Comment // flat, by id
	loading  bool
	err      error
	seq      uint64 // last dispatched load
	applied  uint64 // last applied load
	version  uint64
}

// New creates an empty store.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		api:              backend,
		logger:           logger.Discard(),
		hub:              broadcast.NewHub[Snapshot](),
		index:            NewCommentIndex(),
		indexConcurrency: 4,
		maxCommentLen:    2000,
		photoPos:         make(map[string]int),
		comments:         make(map[string]model.Comment),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index returns the comment index fed by this store.
func (s *Store) Index() *CommentIndex {
	return s.index
}

// Subscribe registers fn for snapshots.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Photo returns a copy of one photo of the viewed user.
func (s *Store) Photo(id string) (model.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.photoPos[id]
	if !ok {
		return model.Photo{}, false
	}
	return s.photos[i].Clone(), true
}

// Comment returns the flat record of a comment, without replies.
func (s *Store) Comment(id string) (model.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	return c, ok
}

// LoadPhotosForUser fetches the user's photos and profile in parallel and
// replaces the store contents. See the package doc for stale handling.
func (s *Store) LoadPhotosForUser(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrNoUser
	}

	s.mu.Lock()
	if s.userID != userID {
		s.resetLocked(userID)
	}
	s.seq++
	seq := s.seq
	s.loading = true
	start := s.bumpLocked()
	s.mu.Unlock()
	s.publish(start)

	photosF := async.Go(ctx, func(ctx context.Context) ([]model.Photo, error) {
		return s.api.PhotosOfUser(ctx, userID)
	})
	ownerF := async.Go(ctx, func(ctx context.Context) (model.User, error) {
		return s.api.User(ctx, userID)
	})
	photos, perr := photosF.Await(ctx)
	owner, oerr := ownerF.Await(ctx)
	loadErr := errors.Join(perr, oerr)

	var normalized []model.Photo
	if loadErr == nil {
		normalized = s.normalize(ctx, userID, photos)
	}

	s.mu.Lock()
	if s.userID != userID || seq <= s.applied {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "stale photo load dropped", logger.UserID(userID))
		if loadErr != nil {
			// The load error stays visible so its kind is not lost.
			return Snapshot{}, errors.Join(ErrStale, loadErr)
		}
		return Snapshot{}, ErrStale
	}

	if seq == s.seq {
		s.loading = false
	}
	if loadErr != nil {
		s.err = loadErr
		snap := s.bumpLocked()
		s.mu.Unlock()
		s.publish(snap)
		s.logger.WarnContext(ctx, "load photos failed", logger.UserID(userID), logger.Error(loadErr))
		return snap, loadErr
	}

	s.owner = owner
	s.setPhotosLocked(normalized)
	s.applied = seq
	s.err = nil
	s.index.ReplaceOwner(userID, normalized)
	snap := s.bumpLocked()
	s.mu.Unlock()

	s.publish(snap)
	s.logger.DebugContext(ctx, "photos loaded", logger.UserID(userID), logger.Count("photos", len(normalized)))
	return snap, nil
}

// normalize shapes comment trees and drops duplicate photos.
func (s *Store) normalize(ctx context.Context, userID string, in []model.Photo) []model.Photo {
	out := make([]model.Photo, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if p.OwnerID == "" {
			p.OwnerID = userID
		}
		tree, dropped := model.NormalizeComments(p.ID, p.Comments)
		for _, d := range dropped {
			s.logger.WarnContext(ctx, "dropped orphan reply",
				logger.PhotoID(p.ID),
				logger.CommentID(d.ID),
				logger.ParentID(d.ParentID),
			)
		}
		p.Comments = tree
		out = append(out, p)
	}
	return out
}

// AddComment posts a comment (parentID == "") or a reply and merges the
// stored record. Validation failures are *api.Error values with the matching
// kind, so callers handle them like server rejections.
func (s *Store) AddComment(ctx context.Context, photoID, text, parentID string) (model.Comment, error) {
	text = sanitizer.Comment(text, s.maxCommentLen)
	if text == "" {
		return model.Comment{}, &api.Error{Op: opAddComment, Kind: api.KindClient, Message: "comment text is empty", Err: ErrEmptyComment}
	}

	s.mu.RLock()
	viewed := s.userID
	_, known := s.photoPos[photoID]
	parent, parentKnown := s.comments[parentID]
	s.mu.RUnlock()

	if !known {
		return model.Comment{}, &api.Error{Op: opAddComment, Kind: api.KindNotFound, Message: "unknown photo " + photoID, Err: ErrUnknownPhoto}
	}
	if parentID != "" {
		if !parentKnown || parent.PhotoID != photoID {
			return model.Comment{}, &api.Error{Op: opAddComment, Kind: api.KindNotFound, Message: "unknown parent comment " + parentID, Err: ErrUnknownParent}
		}
		if parent.IsReply() {
			return model.Comment{}, &api.Error{Op: opAddComment, Kind: api.KindClient, Message: "cannot reply to a reply", Err: ErrNestedReply}
		}
	}

	c, err := s.api.AddComment(ctx, photoID, api.NewComment{Text: text, ParentID: parentID})
	if err != nil {
		return model.Comment{}, err
	}
	if c.ID == "" {
		return model.Comment{}, &api.Error{Op: opAddComment, Kind: api.KindNetwork, Message: "comment response without id", Err: ErrNoCommentID}
	}
	if c.PhotoID == "" {
		c.PhotoID = photoID
	}
	if c.ParentID == "" {
		c.ParentID = parentID
	}

	s.mu.Lock()
	if s.userID != viewed {
		s.mu.Unlock()
		return c, ErrStale
	}
	merged, changed, err := s.mergeLocked(photoID, c)
	if err != nil {
		s.mu.Unlock()
		return c, errors.Join(ErrStale, err)
	}
	var snap Snapshot
	if changed {
		snap = s.bumpLocked()
	}
	s.mu.Unlock()

	if changed {
		s.publish(snap)
	}
	s.logger.DebugContext(ctx, "comment added",
		logger.PhotoID(photoID),
		logger.CommentID(merged.ID),
		logger.ParentID(merged.ParentID),
	)
	return merged, nil
}

// MergeComment applies a server-confirmed comment. It returns false, without
// notifying subscribers, when the comment is already known or cannot be
// placed (unknown photo or parent).
func (s *Store) MergeComment(photoID string, c model.Comment) bool {
	s.mu.Lock()
	_, changed, err := s.mergeLocked(photoID, c)
	var snap Snapshot
	if changed {
		snap = s.bumpLocked()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("comment not merged",
			logger.PhotoID(photoID),
			logger.CommentID(c.ID),
			logger.Error(err),
		)
	}
	if changed {
		s.publish(snap)
	}
	return changed
}

// mergeLocked places c in the tree. Replies nested in c are merged after it.
func (s *Store) mergeLocked(photoID string, c model.Comment) (model.Comment, bool, error) {
	pi, ok := s.photoPos[photoID]
	if !ok {
		return c, false, ErrUnknownPhoto
	}
	if c.ID == "" {
		return c, false, ErrNoCommentID
	}
	if existing, dup := s.comments[c.ID]; dup {
		return existing, false, nil
	}

	replies := c.Replies
	c.Replies = nil
	c.PhotoID = photoID
	photo := &s.photos[pi]

	if c.ParentID == "" {
		photo.Comments = append(photo.Comments, c)
	} else {
		parent, ok := s.comments[c.ParentID]
		if !ok || parent.PhotoID != photoID {
			return c, false, ErrUnknownParent
		}
		if parent.IsReply() {
			c.ParentID = parent.ParentID
		}
		placed := false
		for i := range photo.Comments {
			if photo.Comments[i].ID == c.ParentID {
				photo.Comments[i].Replies = append(photo.Comments[i].Replies, c)
				placed = true
				break
			}
		}
		if !placed {
			return c, false, ErrUnknownParent
		}
	}

	s.comments[c.ID] = c
	s.index.Add(*photo, c)

	for _, r := range replies {
		if r.ParentID == "" {
			r.ParentID = c.ID
		}
		_, _, _ = s.mergeLocked(photoID, r)
	}
	return c, true, nil
}

// UploadPhoto uploads f. A photo that belongs to the viewed user is appended
// to the store.
func (s *Store) UploadPhoto(ctx context.Context, f upload.File) (model.Photo, error) {
	p, err := s.api.UploadPhoto(ctx, f)
	if err != nil {
		return model.Photo{}, err
	}
	tree, _ := model.NormalizeComments(p.ID, p.Comments)
	p.Comments = tree

	s.mu.Lock()
	_, exists := s.photoPos[p.ID]
	if p.ID == "" || exists || p.OwnerID == "" || p.OwnerID != s.userID {
		s.mu.Unlock()
		return p, nil
	}
	s.photoPos[p.ID] = len(s.photos)
	s.photos = append(s.photos, p.Clone())
	s.indexCommentsLocked(p)
	s.index.AddPhoto(p)
	snap := s.bumpLocked()
	s.mu.Unlock()

	s.publish(snap)
	s.logger.InfoContext(ctx, "photo uploaded", logger.PhotoID(p.ID), logger.FileName(p.FileName))
	return p, nil
}

// WarmIndex fetches the photos of every user in userIDs that the index has
// not seen in full, with bounded concurrency, and indexes their comments.
// Failures for single users are joined into the returned error; the others
// are still indexed.
func (s *Store) WarmIndex(ctx context.Context, userIDs []string) error {
	todo := make([]string, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] || s.index.Warmed(id) {
			continue
		}
		seen[id] = true
		todo = append(todo, id)
	}
	if len(todo) == 0 {
		return nil
	}

	// fetched separates "no photos" from "never started" when ctx ends early.
	type fetched struct {
		photos []model.Photo
		ok     bool
	}
	results, err := async.ForEach(ctx, todo, s.indexConcurrency, func(ctx context.Context, id string) (fetched, error) {
		photos, err := s.api.PhotosOfUser(ctx, id)
		return fetched{photos: photos, ok: err == nil}, err
	})

	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", todo[i], r.Err))
			continue
		}
		if !r.Value.ok {
			continue
		}
		s.index.ReplaceOwner(todo[i], s.normalize(ctx, todo[i], r.Value.photos))
	}
	if err != nil {
		errs = append(errs, err)
	}
	s.logger.DebugContext(ctx, "comment index warmed", logger.Count("users", len(todo)), logger.Count("failed", len(errs)))
	return errors.Join(errs...)
}

// Reset discards all state, including the comment index.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked("")
	s.index.Reset()
	snap := s.bumpLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Store) resetLocked(userID string) {
	s.userID = userID
	s.owner = model.User{}
	s.photos = nil
	s.photoPos = make(map[string]int)
	s.comments = make(map[string]model.Comment)
	s.loading = false
	s.err = nil
	// Loads dispatched before the switch can no longer apply.
	s.applied = s.seq
}

func (s *Store) setPhotosLocked(photos []model.Photo) {
	s.photos = photos
	s.photoPos = make(map[string]int, len(photos))
	s.comments = make(map[string]model.Comment)
	for i, p := range photos {
		s.photoPos[p.ID] = i
		s.indexCommentsLocked(p)
	}
}

func (s *Store) indexCommentsLocked(p model.Photo) {
	for _, c := range p.Comments {
		s.comments[c.ID] = c.Flat()
		for _, r := range c.Replies {
			s.comments[r.ID] = r.Flat()
		}
	}
}

// bumpLocked advances the version and returns the resulting snapshot.
func (s *Store) bumpLocked() Snapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		UserID:  s.userID,
		Owner:   s.owner,
		Photos:  model.ClonePhotos(s.photos),
		Loading: s.loading,
		Err:     s.err,
		Version: s.version,
	}
}

func (s *Store) publish(snap Snapshot) {
	s.hub.Publish(snap.Version, snap)
}
