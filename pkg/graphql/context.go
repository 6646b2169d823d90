package graphql

import "context"

type authTokenKey struct{}

// WithAuthToken attaches the member's bearer token to ctx.
func WithAuthToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, authTokenKey{}, token)
}

// AuthToken returns the bearer token attached to ctx, if any.
func AuthToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(authTokenKey{}).(string)
	return token
}
