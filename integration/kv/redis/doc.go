// Package redis connects to Redis and exposes it as a kv.Store, so several
// client processes (or a client that moves between machines) can share one
// persisted session.
//
// # Connecting
//
// Connect validates the URL, retries with growing backoff and pings before
// returning the client:
//
//	cfg := redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := redis.NewStore(client, redis.WithPrefix("photoshare:"))
//
// Both redis:// and rediss:// (TLS) URLs are accepted.
//
// # Health Checking
//
//	check := redis.Healthcheck(client)
//	if err := check(ctx); err != nil {
//		// errors.Is(err, redis.ErrHealthcheckFailed)
//	}
//
// # Errors
//
//   - ErrEmptyConnectionURL: no URL configured
//   - ErrFailedToParseRedisConnString: malformed URL or unsupported scheme
//   - ErrRedisNotReady: every attempt failed before the deadline
//   - ErrHealthcheckFailed: ping failed
package redis
