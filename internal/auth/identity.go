package auth

import (
	"context"

	"github.com/kunalsh/splitledger/internal/rbac"
)

// Identity is the authenticated caller as reported by the upstream identity
// provider. It is threaded explicitly into every ledger operation; nothing
// in the engine reads it ambiently.
type Identity struct {
	Email string
	Role  rbac.Role
}

// ContextKey is a custom type for context keys to avoid collisions
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the identity placed by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
