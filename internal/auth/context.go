package auth

import (
	"context"

	"github.com/taskloom/taskloom/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// authContextKey is the context key for storing AuthContext.
const authContextKey contextKey = "auth_context"

// ContextWithAuth adds AuthContext to the context.
func ContextWithAuth(ctx context.Context, authCtx *model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// AuthFromContext retrieves AuthContext from the context.
// Returns nil if not present.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	authCtx, ok := ctx.Value(authContextKey).(*model.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// UserIDFromContext returns the authenticated user id, or zero if the
// request is unauthenticated.
func UserIDFromContext(ctx context.Context) int64 {
	authCtx := AuthFromContext(ctx)
	if authCtx == nil {
		return 0
	}
	return authCtx.UserID
}
