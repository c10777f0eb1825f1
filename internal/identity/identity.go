// Package identity resolves who the current shopper is. Carts and checkout
// read the identity through the Provider capability and never look at how
// authentication was performed.
package identity

import "context"

// GuestKey is the storage partition used when nobody is signed in.
const GuestKey = "guest"

// Identity is the shopper behind a request.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
	// Token is the backend-issued bearer token, forwarded on backend calls.
	Token string
}

// Guest returns the anonymous identity.
func Guest() Identity {
	return Identity{}
}

// IsGuest reports whether the identity has no stable user id.
func (i Identity) IsGuest() bool {
	return i.UserID == ""
}

// Key returns the cart partition key: the user id, or GuestKey.
func (i Identity) Key() string {
	if i.IsGuest() {
		return GuestKey
	}
	return i.UserID
}

// Provider supplies the identity of the current caller.
type Provider interface {
	Current(ctx context.Context) Identity
}

type contextKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored on ctx, or the guest identity.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(contextKey{}).(Identity); ok {
		return id
	}
	return Guest()
}

// ContextProvider reads the identity that middleware placed on the context.
type ContextProvider struct{}

// Current implements Provider.
func (ContextProvider) Current(ctx context.Context) Identity {
	return FromContext(ctx)
}

// StaticProvider always returns the same identity.
type StaticProvider Identity

// Current implements Provider.
func (p StaticProvider) Current(context.Context) Identity {
	return Identity(p)
}
