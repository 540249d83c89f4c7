package session

import (
	"log/slog"

	"github.com/dmitrymomot/photoshare/core/kv"
)

// Config holds the persisted key names.
type Config struct {
	TokenKey string `env:"SESSION_TOKEN_KEY" envDefault:"photoshare:session:token"`
	UserKey  string `env:"SESSION_USER_KEY" envDefault:"photoshare:session:user"`
}

func defaultConfig() Config {
	return Config{
		TokenKey: "photoshare:session:token",
		UserKey:  "photoshare:session:user",
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets where the token and user snapshot are persisted.
// Without it the session lives in memory only.
func WithStore(store kv.Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithConfig overrides the persisted key names. Empty fields keep defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		if cfg.TokenKey != "" {
			m.cfg.TokenKey = cfg.TokenKey
		}
		if cfg.UserKey != "" {
			m.cfg.UserKey = cfg.UserKey
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}
