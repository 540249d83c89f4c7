package photos

import "log/slog"

// Config holds store settings loaded from the environment.
type Config struct {
	IndexConcurrency int `env:"PHOTOSHARE_INDEX_CONCURRENCY" envDefault:"4"`
	MaxCommentLength int `env:"PHOTOSHARE_MAX_COMMENT_LENGTH" envDefault:"2000"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig applies cfg. Non-positive values keep the defaults, except
// MaxCommentLength where a negative value disables the limit.
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		if cfg.IndexConcurrency > 0 {
			s.indexConcurrency = cfg.IndexConcurrency
		}
		if cfg.MaxCommentLength != 0 {
			s.maxCommentLen = cfg.MaxCommentLength
		}
	}
}

// WithIndex shares an existing comment index.
func WithIndex(idx *CommentIndex) Option {
	return func(s *Store) {
		if idx != nil {
			s.index = idx
		}
	}
}
