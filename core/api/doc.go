// Package api is the HTTP client for the photo-sharing REST service.
//
// Every call goes through Do, which attaches the bearer token, tags the
// request with an X-Request-ID, and classifies the outcome into one of four
// kinds:
//
//	network_error  transport failure, 5xx, malformed response body
//	auth_error     401 or 403
//	not_found      404
//	client_error   any other 4xx, carrying the server's message
//
// Classified errors are *Error values that also match the ErrNetwork, ErrAuth,
// ErrClient and ErrNotFound sentinels:
//
//	photos, err := client.PhotosOfUser(ctx, userID)
//	switch {
//	case errors.Is(err, api.ErrNotFound):
//		// unknown user
//	case errors.Is(err, api.ErrAuth):
//		// the auth hook has already run
//	}
//
// # Tokens
//
// The token comes from a TokenSource, normally the session manager. A single
// call can present a different token with WithToken; session validation at
// startup uses this to check a persisted token before it becomes current.
//
// # Auth Failures
//
// Any auth_error, whichever endpoint produced it, is reported to the hook set
// with WithAuthErrorHook before Do returns. Wire it to session invalidation.
//
// # Rate Limiting and Metrics
//
// WithRateLimit installs a token bucket (golang.org/x/time/rate) that every
// request waits on. WithMetrics registers request counters and latency
// histograms labelled by method, canonical endpoint and outcome.
//
// There are no automatic retries.
package api
