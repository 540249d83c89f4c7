// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/photoshare/core/config"
//
//	type APIConfig struct {
//		BaseURL string        `env:"PHOTOSHARE_API_URL" envDefault:"http://localhost:3001"`
//		Timeout time.Duration `env:"PHOTOSHARE_API_TIMEOUT" envDefault:"15s"`
//	}
//
//	func main() {
//		var api APIConfig
//
//		// Load with error handling
//		if err := config.Load(&api); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&api)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 APIConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 APIConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently:
//
//	type KVConfig struct {
//		Backend string `env:"PHOTOSHARE_KV_BACKEND" envDefault:"memory"`
//	}
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	// Each type has its own cache entry
//	config.MustLoad(&KVConfig{})
//	config.MustLoad(&RedisConfig{})
//
// Reset drops every cached entry; it exists for tests that change the
// environment between loads.
package config
