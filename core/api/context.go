package api

import "context"

type tokenKey struct{}

// WithToken makes calls made with the returned context present token instead
// of the one from the client's TokenSource.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set with WithToken. Inside an
// AuthErrorHook it is the token the rejected request presented ("" for none).
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok
}
