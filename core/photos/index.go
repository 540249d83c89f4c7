package photos

import (
	"sort"
	"sync"

	"github.com/dmitrymomot/photoshare/core/model"
)

// AuthoredComment is a comment together with the photo it belongs to.
type AuthoredComment struct {
	Comment       model.Comment // without replies
	PhotoID       string
	PhotoFileName string
	PhotoOwnerID  string
}

type indexedPhoto struct {
	ownerID  string
	fileName string
	comments map[string]model.Comment
}

// CommentIndex maps authors to the comments they wrote across every photo the
// client has seen. It is safe for concurrent use.
type CommentIndex struct {
	mu     sync.RWMutex
	photos map[string]*indexedPhoto // by photo id
	warmed map[string]bool          // owner ids fetched in full
}

// NewCommentIndex creates an empty index.
func NewCommentIndex() *CommentIndex {
	return &CommentIndex{
		photos: make(map[string]*indexedPhoto),
		warmed: make(map[string]bool),
	}
}

// ReplaceOwner drops every photo of ownerID and indexes photos instead.
func (x *CommentIndex) ReplaceOwner(ownerID string, photos []model.Photo) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for id, p := range x.photos {
		if p.ownerID == ownerID {
			delete(x.photos, id)
		}
	}
	for _, p := range photos {
		if p.OwnerID == "" {
			p.OwnerID = ownerID
		}
		ip := x.photoLocked(p)
		for _, c := range p.Comments {
			ip.comments[c.ID] = c.Flat()
			for _, r := range c.Replies {
				ip.comments[r.ID] = r.Flat()
			}
		}
	}
	x.warmed[ownerID] = true
}

// Add indexes a single comment of p. p's comments are not read.
func (x *CommentIndex) Add(p model.Photo, c model.Comment) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.photoLocked(p).comments[c.ID] = c.Flat()
}

// AddPhoto indexes p and its comments without touching other photos.
func (x *CommentIndex) AddPhoto(p model.Photo) {
	x.mu.Lock()
	defer x.mu.Unlock()
	ip := x.photoLocked(p)
	for _, c := range p.Comments {
		ip.comments[c.ID] = c.Flat()
		for _, r := range c.Replies {
			ip.comments[r.ID] = r.Flat()
		}
	}
}

func (x *CommentIndex) photoLocked(p model.Photo) *indexedPhoto {
	ip, ok := x.photos[p.ID]
	if !ok {
		ip = &indexedPhoto{comments: make(map[string]model.Comment)}
		x.photos[p.ID] = ip
	}
	if p.OwnerID != "" {
		ip.ownerID = p.OwnerID
	}
	if p.FileName != "" {
		ip.fileName = p.FileName
	}
	return ip
}

// CommentsBy returns the comments written by userID, newest first.
func (x *CommentIndex) CommentsBy(userID string) []AuthoredComment {
	x.mu.RLock()
	var out []AuthoredComment
	for photoID, p := range x.photos {
		for _, c := range p.comments {
			if c.Author.ID != userID {
				continue
			}
			out = append(out, AuthoredComment{
				Comment:       c,
				PhotoID:       photoID,
				PhotoFileName: p.fileName,
				PhotoOwnerID:  p.ownerID,
			})
		}
	}
	x.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Comment, out[j].Comment
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

// CommentCounts returns the number of indexed comments per author id.
func (x *CommentIndex) CommentCounts() map[string]int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range x.photos {
		for _, c := range p.comments {
			counts[c.Author.ID]++
		}
	}
	return counts
}

// Warmed reports whether ownerID's photos were indexed in full.
func (x *CommentIndex) Warmed(ownerID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.warmed[ownerID]
}

// Reset empties the index.
func (x *CommentIndex) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.photos = make(map[string]*indexedPhoto)
	x.warmed = make(map[string]bool)
}
