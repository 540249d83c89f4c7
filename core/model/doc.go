// Package model defines the value types exchanged with the photo sharing
// service: users, photos and the two-level comment tree attached to each photo.
//
// All types are plain values. Slices are never shared between owners: use the
// Clone helpers before handing a value to code that may keep it.
//
// # Comment Trees
//
// A photo holds an ordered sequence of top-level comments. A comment whose
// ParentID is set is a reply and lives in the Replies slice of exactly one
// top-level comment of the same photo. Replies never carry replies of their own.
//
// NormalizeComments turns any server payload (flat, nested, or a mix of both)
// into that shape:
//
//	tree, dropped := model.NormalizeComments(photo.ID, photo.Comments)
//	for _, c := range dropped {
//		log.Printf("orphan reply %s dropped", c.ID)
//	}
package model
