package auth

import (
	"context"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyPrincipal is the context key for the authenticated principal id
	ContextKeyPrincipal contextKey = "principal"
	// ContextKeyEmail is the context key for the principal's email claim
	ContextKeyEmail contextKey = "email"
)

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, ContextKeyPrincipal, p.Subject)
	if p.Email != "" {
		ctx = context.WithValue(ctx, ContextKeyEmail, p.Email)
	}
	return ctx
}

// PrincipalFromContext retrieves the authenticated principal from the context
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	subject, ok := ctx.Value(ContextKeyPrincipal).(string)
	if !ok || subject == "" {
		return nil, false
	}
	p := &Principal{Subject: subject}
	if email, ok := ctx.Value(ContextKeyEmail).(string); ok {
		p.Email = email
	}
	return p, true
}
