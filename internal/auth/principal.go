package auth

import (
	"context"
	"time"
)

// Principal - аутентифицированный пользователь запроса.
type Principal struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

type principalKey struct{}

// WithPrincipal кладет пользователя в контекст.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext достает пользователя из контекста.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}
