// Package auth carries the caller identity resolved from a bearer token
// through the request context.
package auth

import (
	"context"
	"strings"
)

// Identity is the authenticated caller.  UserID is stable across sessions
// and keys the caller's profile.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Nickname returns the display name to seed a new profile with: the token's
// name claim, otherwise the local part of the email address.
func (i Identity) Nickname() string {
	if n := strings.TrimSpace(i.Name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(i.Email, "@"); ok {
		return local
	}
	return i.Email
}

type identityKey struct{}

// WithIdentity returns a derived context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// ContextProvider resolves the identity attached to the request context by
// the JWT middleware.
type ContextProvider struct{}

// Identity implements service.IdentityProvider.
func (ContextProvider) Identity(ctx context.Context) (Identity, bool) {
	return FromContext(ctx)
}
