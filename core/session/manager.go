package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/photoshare/core/api"
	"github.com/dmitrymomot/photoshare/core/kv"
	"github.com/dmitrymomot/photoshare/core/logger"
	"github.com/dmitrymomot/photoshare/core/model"
	"github.com/dmitrymomot/photoshare/core/sanitizer"
	"github.com/dmitrymomot/photoshare/pkg/broadcast"
)

// Manager handles the session lifecycle. Create it with New.
type Manager struct {
	auth   Authenticator
	store  kv.Store
	cfg    Config
	logger *slog.Logger
	hub    *broadcast.Hub[Session]

	// persistMu orders kv writes the same way as state changes.
	persistMu sync.Mutex

	mu    sync.RWMutex
	sess  Session
	epoch uint64 // bumped by every applied change
}

// New creates an inactive manager. Without WithStore the session is kept in
// memory only.
func New(auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		auth:   auth,
		store:  kv.NewMemory(),
		cfg:    defaultConfig(),
		logger: logger.Discard(),
		hub:    broadcast.NewHub[Session](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the current session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

// CurrentToken returns the bearer token of an active session.
func (m *Manager) CurrentToken() (string, bool) {
	s := m.Current()
	if !s.IsActive() {
		return "", false
	}
	return s.Token, true
}

// CurrentUser returns the logged-in user's snapshot.
func (m *Manager) CurrentUser() (model.User, bool) {
	s := m.Current()
	if !s.IsActive() {
		return model.User{}, false
	}
	return s.User, true
}

// Subscribe registers fn for state changes.
func (m *Manager) Subscribe(fn func(Session)) (unsubscribe func()) {
	return m.hub.Subscribe(fn)
}

// Restore validates the persisted token with the server. A missing token
// leaves the session as it is. Any other outcome than a confirmed token and a
// fetched profile clears the persisted state. An error is returned only when
// validation could not complete (network, storage); a rejected token is the
// normal logged-out result.
func (m *Manager) Restore(ctx context.Context) (Session, error) {
	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()
	unchanged := func(_ Session, e uint64) bool { return e == epoch }

	raw, err := m.store.Get(ctx, m.cfg.TokenKey)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && len(raw) == 0) {
		return m.Current(), nil
	}
	if err != nil {
		return m.Current(), fmt.Errorf("session: read token: %w", err)
	}

	token := string(raw)
	vctx := api.WithToken(ctx, token)

	status, err := m.auth.SessionStatus(vctx)
	if err == nil && (!status.LoggedIn || status.UserID == "") {
		err = ErrNotAuthenticated
	}
	var user model.User
	if err == nil {
		user, err = m.auth.User(vctx, status.UserID)
	}

	if err != nil {
		sess, applied, perr := m.commit(ctx, unchanged, Session{State: Inactive})
		if !applied {
			m.logger.DebugContext(ctx, "session restore superseded", logger.Error(err))
			return sess, nil
		}
		m.logger.InfoContext(ctx, "persisted session rejected",
			logger.ErrorKind(string(api.KindOf(err))),
			logger.Error(err),
		)
		if errors.Is(err, ErrNotAuthenticated) || api.KindOf(err) == api.KindAuth {
			return sess, perr
		}
		return sess, errors.Join(fmt.Errorf("session: restore: %w", err), perr)
	}

	sess, applied, perr := m.commit(ctx, unchanged, Session{State: Active, Token: token, User: user})
	if !applied {
		m.logger.DebugContext(ctx, "session restore superseded", logger.UserID(user.ID))
		return sess, nil
	}
	m.logger.InfoContext(ctx, "session restored", logger.UserID(user.ID))
	return sess, perr
}

// Login authenticates and activates the session. The login name is cleaned
// first; an empty name is rejected without a request. Rejections by the server
// are returned as ErrInvalidCredentials joined with the API error. Network
// failures are returned unchanged. If only persistence fails, the active
// session is returned together with ErrPersist.
func (m *Manager) Login(ctx context.Context, creds api.Credentials) (Session, error) {
	creds.LoginName = sanitizer.LoginName(creds.LoginName)
	if creds.LoginName == "" {
		return m.Current(), ErrInvalidCredentials
	}

	// No token on the login request: a rejection must not look like the
	// current session being revoked.
	res, err := m.auth.Login(api.WithToken(ctx, ""), creds)
	if err != nil {
		switch api.KindOf(err) {
		case api.KindAuth, api.KindClient, api.KindNotFound:
			return m.Current(), errors.Join(ErrInvalidCredentials, err)
		}
		return m.Current(), err
	}

	sess, _, perr := m.commit(ctx, nil, Session{State: Active, Token: res.Token, User: res.User})
	m.logger.InfoContext(ctx, "logged in", logger.UserID(res.User.ID))
	return sess, perr
}

// Logout tells the server (best effort) and clears the session.
func (m *Manager) Logout(ctx context.Context) {
	if tok, ok := m.CurrentToken(); ok {
		if err := m.auth.Logout(api.WithToken(ctx, tok)); err != nil {
			m.logger.DebugContext(ctx, "server logout failed", logger.Error(err))
		}
	}
	if _, changed, err := m.clear(ctx, nil); err != nil {
		m.logger.WarnContext(ctx, "logout: clear persisted session", logger.Error(err))
	} else if changed {
		m.logger.InfoContext(ctx, "logged out")
	}
}

// Invalidate clears the session without contacting the server. It is
// idempotent.
func (m *Manager) Invalidate(ctx context.Context) {
	if _, changed, err := m.clear(ctx, nil); err != nil {
		m.logger.WarnContext(ctx, "invalidate: clear persisted session", logger.Error(err))
	} else if changed {
		m.logger.InfoContext(ctx, "session invalidated")
	}
}

// HandleAuthError is the API client's auth-error hook. It invalidates the
// session when the rejected token (see api.TokenFromContext) is the current one.
func (m *Manager) HandleAuthError(ctx context.Context, err *api.Error) {
	rejected, _ := api.TokenFromContext(ctx)
	if rejected == "" {
		return
	}
	sameToken := func(s Session, _ uint64) bool { return s.IsActive() && s.Token == rejected }

	_, changed, perr := m.clear(ctx, sameToken)
	if perr != nil {
		m.logger.WarnContext(ctx, "auth error: clear persisted session", logger.Error(perr))
	}
	if !changed {
		return
	}
	if err == nil {
		m.logger.InfoContext(ctx, "session rejected by server")
		return
	}
	m.logger.InfoContext(ctx, "session rejected by server",
		logger.Operation(err.Op),
		logger.StatusCode(err.Status),
		logger.Error(err),
	)
}

// UpdateProfile saves u as the current user's profile. The server's answer
// replaces the stored snapshot wholesale.
func (m *Manager) UpdateProfile(ctx context.Context, u model.User) (model.User, error) {
	cur := m.Current()
	if !cur.IsActive() {
		return model.User{}, ErrNotAuthenticated
	}
	if u.ID == "" {
		u.ID = cur.User.ID
	}
	if u.ID != cur.User.ID {
		return model.User{}, ErrForbidden
	}

	updated, err := m.auth.UpdateUser(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	if updated.ID == "" {
		updated.ID = cur.User.ID
	}

	stillOurs := func(s Session, _ uint64) bool {
		return s.IsActive() && s.Token == cur.Token && s.User.ID == updated.ID
	}
	_, applied, perr := m.commit(ctx, stillOurs, Session{State: Active, Token: cur.Token, User: updated})
	if !applied {
		return updated, ErrSessionChanged
	}
	m.logger.InfoContext(ctx, "profile updated", logger.UserID(updated.ID))
	return updated, perr
}

func (m *Manager) clear(ctx context.Context, guard func(Session, uint64) bool) (Session, bool, error) {
	m.mu.RLock()
	wasActive := m.sess.IsActive()
	m.mu.RUnlock()

	sess, applied, err := m.commit(ctx, guard, Session{State: Inactive})
	return sess, applied && wasActive, err
}

// commit replaces the session with next when guard (if any) accepts the
// current state, then persists and publishes it. It reports whether next was
// applied; when it was not, the current session is returned.
func (m *Manager) commit(ctx context.Context, guard func(Session, uint64) bool, next Session) (Session, bool, error) {
	m.persistMu.Lock()

	m.mu.Lock()
	if guard != nil && !guard(m.sess, m.epoch) {
		cur := m.sess
		m.mu.Unlock()
		m.persistMu.Unlock()
		return cur, false, nil
	}
	prev := m.sess
	m.epoch++
	changed := prev.State != next.State || prev.Token != next.Token || prev.User != next.User
	next.Version = prev.Version
	if changed {
		next.Version++
	}
	m.sess = next
	m.mu.Unlock()

	err := m.persist(ctx, next)
	m.persistMu.Unlock()

	if changed {
		m.hub.Publish(next.Version, next)
	}
	return next, true, err
}

func (m *Manager) persist(ctx context.Context, s Session) error {
	// Persisted state must follow memory even if the caller gives up.
	ctx = context.WithoutCancel(ctx)

	if !s.IsActive() {
		err := errors.Join(
			m.store.Delete(ctx, m.cfg.TokenKey),
			m.store.Delete(ctx, m.cfg.UserKey),
		)
		if err != nil {
			return errors.Join(ErrPersist, err)
		}
		return nil
	}

	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return errors.Join(ErrPersist, err)
	}
	if err := m.store.Set(ctx, m.cfg.TokenKey, []byte(s.Token)); err != nil {
		return errors.Join(ErrPersist, err)
	}
	if err := m.store.Set(ctx, m.cfg.UserKey, userJSON); err != nil {
		return errors.Join(ErrPersist, err)
	}
	return nil
}
