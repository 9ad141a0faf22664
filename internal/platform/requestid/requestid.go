// Package requestid carries a per-request correlation ID through contexts.
package requestid

import "context"

// Header is the HTTP header that carries the request ID in both directions.
const Header = "X-Request-ID"

// MaxLength bounds a client-supplied request ID.
const MaxLength = 128

type ctxKey struct{}

// NewContext returns a context that carries the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Valid reports whether a client-supplied ID may be reused as is: non-empty,
// at most MaxLength bytes, and printable ASCII without spaces.
func Valid(id string) bool {
	if id == "" || len(id) > MaxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
