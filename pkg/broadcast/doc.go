// Package broadcast delivers versioned values to a set of in-process listeners.
//
// A Hub keeps an explicit list of subscribers. Each published value carries a
// version; a value whose version is not newer than the last accepted one is
// dropped. Accepted values are delivered one at a time in version order, so a
// listener never sees an older state after a newer one, even with several
// publishers racing.
//
//	hub := broadcast.NewHub[Snapshot]()
//	unsubscribe := hub.Subscribe(func(s Snapshot) {
//		render(s)
//	})
//	defer unsubscribe()
//
//	hub.Publish(snap.Version, snap)
//
// Listeners run outside the hub lock and may publish to the same hub. Such a
// value is queued and delivered after the current round, by the goroutine that
// is already delivering. For the same reason Publish can return before its
// value has reached the listeners when another goroutine is mid-delivery.
package broadcast
