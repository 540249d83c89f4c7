// Package kv defines the small key-value contract the client uses to persist
// state between runs, plus an in-memory implementation.
//
// Persistent backends live under integration/kv (pebble on disk, redis over
// the network). All implementations return ErrNotFound for absent keys, so
// callers treat a missing value as the normal empty state:
//
//	raw, err := store.Get(ctx, "photoshare:session:token")
//	switch {
//	case errors.Is(err, kv.ErrNotFound):
//		// anonymous startup
//	case err != nil:
//		return err
//	}
package kv
