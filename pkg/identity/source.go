// Package identity supplies short-lived identity tokens for the
// authenticated principal. The activation workflow consumes tokens through
// the Source interface and never caches them itself.
package identity

import (
	"context"
	"errors"
)

// ErrTokenUnavailable is returned when no usable identity token can be
// obtained for the current principal. It is fatal for the current activation
// attempt and recoverable only by re-authentication.
var ErrTokenUnavailable = errors.New("identity token unavailable")

// Source defines how callers obtain identity tokens.
// Implementations must cache and refresh tokens as needed.
type Source interface {
	// Token returns a valid identity token for the current principal.
	// It returns ErrTokenUnavailable when no token can be produced.
	Token(ctx context.Context) (string, error)
}

// StaticSource is a Source backed by a fixed token. Used by CLIs and tests.
type StaticSource string

// Token implements Source.
func (s StaticSource) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", ErrTokenUnavailable
	}
	return string(s), nil
}
