package imageloc

import (
	"log/slog"
	"net/http"
)

// Config holds the two image bases.
type Config struct {
	ServerURL string `env:"PHOTOSHARE_IMAGES_SERVER_URL" envDefault:"http://localhost:3001/images"`
	StaticURL string `env:"PHOTOSHARE_IMAGES_STATIC_URL" envDefault:"http://localhost:3000/images"`
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHTTPClient sets the client used by Fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithMaxBytes limits the size of a fetched image.
func WithMaxBytes(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}
