package model

// Flat returns the comment without its replies.
func (c Comment) Flat() Comment {
	c.Replies = nil
	return c
}

// Clone returns a deep copy of the comment.
func (c Comment) Clone() Comment {
	if c.Replies != nil {
		replies := make([]Comment, len(c.Replies))
		for i, r := range c.Replies {
			replies[i] = r.Clone()
		}
		c.Replies = replies
	}
	return c
}

// Clone returns a deep copy of the photo and its comment tree.
func (p Photo) Clone() Photo {
	if p.Comments != nil {
		comments := make([]Comment, len(p.Comments))
		for i, c := range p.Comments {
			comments[i] = c.Clone()
		}
		p.Comments = comments
	}
	return p
}

// ClonePhotos returns a deep copy of the slice. A nil slice stays nil.
func ClonePhotos(photos []Photo) []Photo {
	if photos == nil {
		return nil
	}
	out := make([]Photo, len(photos))
	for i, p := range photos {
		out[i] = p.Clone()
	}
	return out
}
