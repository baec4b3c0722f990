package auth

import (
	"context"
	"mutsamarket/pkg/httperror"
)

type principalKey struct{}

// Principal is the authenticated identity of a request.
type Principal struct {
	Username string
}

func (p Principal) Name() string {
	return p.Username
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.Username == "" {
		return Principal{}, false
	}
	return p, true
}

// Require returns the principal of ctx or a 401 error.
func Require(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, httperror.Unauthorized(
			"auth.principal.missing",
			"Authentication required",
			nil,
		)
	}
	return p, nil
}
