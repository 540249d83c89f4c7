// Package feature holds the process-wide feature switches of the client.
//
// Flags is an explicit state object rather than an ambient context value:
// readers call Advanced, interested parties Subscribe, and exactly one
// component owns the mutator. In this module that owner is the navigation
// policy, which must re-evaluate the current route whenever the switch flips.
//
//	flags := feature.New()
//	unsubscribe := flags.Subscribe(func(s feature.State) {
//		log.Println("advanced features:", s.Advanced)
//	})
//	defer unsubscribe()
//
//	flags.SetAdvanced(true)
//
// Flags are not persisted; every process starts with all switches off.
package feature
