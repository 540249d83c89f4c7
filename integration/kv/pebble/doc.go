// Package pebble implements kv.Store on top of CockroachDB's Pebble, giving the
// client durable local state (the session token and user snapshot) without an
// external service.
//
//	store, err := pebble.Open("/var/lib/photoshare/state")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
// Writes use pebble.Sync so a crash right after login does not lose the token.
package pebble
