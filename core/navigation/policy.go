package navigation

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/photoshare/core/logger"
	"github.com/dmitrymomot/photoshare/core/model"
	"github.com/dmitrymomot/photoshare/core/photos"
	"github.com/dmitrymomot/photoshare/pkg/broadcast"
	"github.com/dmitrymomot/photoshare/pkg/feature"
)

// Source is the part of the photo store the policy follows.
// *photos.Store implements it.
type Source interface {
	Snapshot() photos.Snapshot
	Subscribe(fn func(photos.Snapshot)) (unsubscribe func())
}

var _ Source = (*photos.Store)(nil)

// Option configures a Policy.
type Option func(*Policy)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Policy) {
		if l != nil {
			p.logger = l
		}
	}
}

// Policy holds the current route. Create it with New and release it with
// Close.
type Policy struct {
	flags     *feature.Flags
	logger    *slog.Logger
	hub       *broadcast.Hub[Route]
	unsubs    []func()
	closeOnce sync.Once

	mu           sync.Mutex
	route        Route
	advanced     bool
	flagsVersion uint64
	listUser     string   // user the photo ids belong to
	photoIDs     []string // in store order
	listLoading  bool
	storeVersion uint64
	version      uint64
}

// New creates a policy at the empty route that follows flags and store.
func New(flags *feature.Flags, store Source, opts ...Option) *Policy {
	p := &Policy{
		flags:  flags,
		logger: logger.Discard(),
		hub:    broadcast.NewHub[Route](),
	}
	for _, opt := range opts {
		opt(p)
	}

	// Subscribe before reading so no change falls in between.
	p.unsubs = append(p.unsubs,
		flags.Subscribe(p.onFlags),
		store.Subscribe(p.onSnapshot),
	)
	p.onFlags(flags.State())
	p.onSnapshot(store.Snapshot())
	return p
}

// Close stops following the flags and the store.
func (p *Policy) Close() {
	p.closeOnce.Do(func() {
		for _, unsub := range p.unsubs {
			unsub()
		}
	})
}

// Current returns the current route.
func (p *Policy) Current() Route {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.route
}

// Advanced reports the advanced switch as last seen by the policy.
func (p *Policy) Advanced() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advanced
}

// Subscribe registers fn for route changes.
func (p *Policy) Subscribe(fn func(Route)) (unsubscribe func()) {
	return p.hub.Subscribe(fn)
}

// Navigate moves to r and applies the rule. It returns the resulting route,
// which differs from r when the rule redirects.
func (p *Policy) Navigate(r Route) Route {
	return p.apply("navigate", func() { p.route = r })
}

// SetAdvanced sets the advanced switch and returns the resulting route.
func (p *Policy) SetAdvanced(on bool) Route {
	return p.applyFlags(p.flags.SetAdvanced(on))
}

// ToggleAdvanced flips the advanced switch and returns the resulting route.
func (p *Policy) ToggleAdvanced() Route {
	return p.applyFlags(p.flags.ToggleAdvanced())
}

// Step moves delta photos forward (or back when negative) on a single photo
// route. It reports false and stays put when the target is out of range or
// the route is not a single photo.
func (p *Policy) Step(delta int) bool {
	moved := false
	p.apply("step", func() {
		r := p.route
		if delta == 0 || r.Kind != SinglePhoto || r.UserID != p.listUser {
			return
		}
		i := slices.Index(p.photoIDs, r.PhotoID)
		target := i + delta
		if i < 0 || target < 0 || target >= len(p.photoIDs) {
			return
		}
		p.route = Single(r.UserID, p.photoIDs[target])
		moved = true
	})
	return moved
}

// Position returns the 1-based position of the current photo and the number
// of photos in the list. ok is false unless the route is a single photo that
// is part of the loaded list.
func (p *Policy) Position() (n, total int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.route.Kind != SinglePhoto || p.route.UserID != p.listUser {
		return 0, 0, false
	}
	i := slices.Index(p.photoIDs, p.route.PhotoID)
	if i < 0 {
		return 0, 0, false
	}
	return i + 1, len(p.photoIDs), true
}

// Caption returns the context text for the top bar: "Photos of First Last"
// on photo routes and "First Last" on a profile.
func (p *Policy) Caption(user model.User) string {
	name := user.FullName()
	if name == "" {
		return ""
	}
	switch p.Current().Kind {
	case PhotoList, SinglePhoto:
		return "Photos of " + name
	case Profile:
		return name
	}
	return ""
}

func (p *Policy) onFlags(s feature.State) {
	p.applyFlags(s)
}

func (p *Policy) applyFlags(s feature.State) Route {
	return p.apply("flags", func() {
		if s.Version < p.flagsVersion {
			return
		}
		p.flagsVersion = s.Version
		p.advanced = s.Advanced
	})
}

func (p *Policy) onSnapshot(s photos.Snapshot) {
	p.apply("photos", func() {
		if s.Version < p.storeVersion {
			return
		}
		p.storeVersion = s.Version
		p.listUser = s.UserID
		p.photoIDs = s.PhotoIDs()
		p.listLoading = s.Loading
	})
}

// apply runs fn under the lock, settles the route and publishes a change.
func (p *Policy) apply(reason string, fn func()) Route {
	p.mu.Lock()
	prev := p.route
	fn()
	p.route = p.settleLocked(p.route)
	next := p.route
	changed := next != prev
	if changed {
		p.version++
	}
	version := p.version
	p.mu.Unlock()

	if changed {
		p.logger.Debug("route changed",
			logger.Route(next.String()),
			slog.String("from", prev.String()),
			slog.String("reason", reason),
			logger.Version(version),
		)
		p.hub.Publish(version, next)
	}
	return next
}

func (p *Policy) settleLocked(r Route) Route {
	switch {
	case p.advanced && r.Kind == PhotoList && r.UserID == p.listUser && len(p.photoIDs) > 0:
		return Single(r.UserID, p.photoIDs[0])
	case !p.advanced && r.Kind == SinglePhoto:
		return List(r.UserID)
	case r.Kind == SinglePhoto && r.UserID == p.listUser && !p.listLoading &&
		!slices.Contains(p.photoIDs, r.PhotoID):
		// The shown photo is no longer in the loaded list.
		if len(p.photoIDs) > 0 {
			return Single(r.UserID, p.photoIDs[0])
		}
		return List(r.UserID)
	}
	return r
}
