package model

// NormalizeComments rebuilds a photo's comment sequence into the two-level shape.
//
// Input order is preserved: top-level comments keep their relative order and
// replies are appended to their parent in the order they are met. Comments
// nested under Replies in the payload are flattened first. A reply to a reply is
// attached to the top-level ancestor. Duplicate ids keep the first occurrence.
// Replies whose parent is not part of the payload are returned as dropped.
func NormalizeComments(photoID string, in []Comment) (tree []Comment, dropped []Comment) {
	flat := make([]Comment, 0, len(in))
	var walk func(cs []Comment, parent string)
	walk = func(cs []Comment, parent string) {
		for _, c := range cs {
			replies := c.Replies
			c.Replies = nil
			if c.ParentID == "" && parent != "" {
				c.ParentID = parent
			}
			if c.PhotoID == "" {
				c.PhotoID = photoID
			}
			flat = append(flat, c)
			walk(replies, c.ID)
		}
	}
	walk(in, "")

	uniq := make([]Comment, 0, len(flat))
	parentOf := make(map[string]string, len(flat))
	for _, c := range flat {
		if _, dup := parentOf[c.ID]; dup {
			continue
		}
		parentOf[c.ID] = c.ParentID
		uniq = append(uniq, c)
	}

	// root resolves the top-level ancestor, guarding against cycles.
	root := func(id string) (string, bool) {
		for range len(uniq) + 1 {
			p, ok := parentOf[id]
			if !ok {
				return "", false
			}
			if p == "" {
				return id, true
			}
			id = p
		}
		return "", false
	}

	pos := make(map[string]int, len(uniq))
	tree = make([]Comment, 0, len(uniq))
	for _, c := range uniq {
		if c.ParentID == "" {
			pos[c.ID] = len(tree)
			tree = append(tree, c)
		}
	}
	for _, c := range uniq {
		if c.ParentID == "" {
			continue
		}
		top, ok := root(c.ParentID)
		i, found := pos[top]
		if !ok || !found {
			dropped = append(dropped, c)
			continue
		}
		c.ParentID = top
		tree[i].Replies = append(tree[i].Replies, c)
	}
	return tree, dropped
}
