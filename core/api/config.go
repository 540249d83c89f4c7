package api

import "time"

// Config holds client settings loaded from the environment.
type Config struct {
	BaseURL string        `env:"PHOTOSHARE_API_URL" envDefault:"http://localhost:3001"`
	Timeout time.Duration `env:"PHOTOSHARE_API_TIMEOUT" envDefault:"15s"`
	RPS     float64       `env:"PHOTOSHARE_API_RPS" envDefault:"0"`
	Burst   int           `env:"PHOTOSHARE_API_BURST" envDefault:"1"`
	Metrics bool          `env:"PHOTOSHARE_METRICS" envDefault:"false"`
}
