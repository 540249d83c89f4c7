package imageloc

import "sync"

// State is the load state of an image.
type State int

const (
	Loading State = iota
	Loaded
	Unavailable
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unavailable"
	}
}

// Attempt tracks the two-step load of one image. It offers the primary URL,
// then the fallback URL once, then nothing.
type Attempt struct {
	name string
	urls [2]string

	mu    sync.Mutex
	n     int // candidate in use
	state State
}

// Name returns the file name being loaded.
func (a *Attempt) Name() string { return a.name }

// URL returns the candidate to load now, or "" once loading has ended.
func (a *Attempt) URL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Loading {
		return ""
	}
	return a.urls[a.n]
}

// Fail records a load failure of the current candidate. It returns the
// fallback URL after the first failure; after the second the image is
// Unavailable and ok is false.
func (a *Attempt) Fail() (next string, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Loading {
		return "", false
	}
	if a.n == 0 {
		a.n = 1
		return a.urls[1], true
	}
	a.state = Unavailable
	return "", false
}

// Succeed records that the current candidate loaded.
func (a *Attempt) Succeed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Loading {
		a.state = Loaded
	}
}

// State returns the load state.
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Tries returns the number of candidates offered so far.
func (a *Attempt) Tries() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.name == "" {
		return 0
	}
	return a.n + 1
}
