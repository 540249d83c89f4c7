package client

import (
	"github.com/dmitrymomot/photoshare/core/api"
	"github.com/dmitrymomot/photoshare/core/imageloc"
	"github.com/dmitrymomot/photoshare/core/photos"
	"github.com/dmitrymomot/photoshare/core/session"
	kvredis "github.com/dmitrymomot/photoshare/integration/kv/redis"
)

// Storage backends for the persisted session.
const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
	BackendRedis  = "redis"
)

type Config struct {
	API     api.Config
	Session session.Config
	Photos  photos.Config
	Images  imageloc.Config
	Redis   kvredis.Config

	KVBackend   string `env:"PHOTOSHARE_KV_BACKEND" envDefault:"memory"`
	KVPath      string `env:"PHOTOSHARE_KV_PATH" envDefault:"photoshare-data"`
	RedisPrefix string `env:"PHOTOSHARE_REDIS_PREFIX" envDefault:""`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}
