// Package navigation decides which photo view the client shows.
//
// A Route is either the list of a user's photos (/photos/:userId), a single
// photo (/photos/:userId/:photoId) or a profile (/users/:userId). The Policy
// keeps the current route in line with the advanced features switch and the
// photos held by the store:
//
//   - advanced on, on a list, and the store has photos for that user: move to
//     the first photo;
//   - advanced off while on a single photo: go back to the list.
//
// The rule is applied when the switch flips, when the store publishes a new
// snapshot and when the caller navigates. A switch flipped before the photos
// arrive therefore takes effect once they do.
//
//	policy := navigation.New(flags, store, navigation.WithLogger(log))
//	defer policy.Close()
//
//	policy.Subscribe(func(r navigation.Route) { router.Replace(r.String()) })
//	policy.Navigate(navigation.List(userID))
//	policy.SetAdvanced(true)
//
// The policy owns the switch: SetAdvanced and ToggleAdvanced are the only
// places that change it.
package navigation
