package httputil

import (
	"context"
	"net/http"

	"onepager/internal/domain/models/onepager"
)

// Context key type to avoid collisions
type contextKey string

const (
	principalKey contextKey = "principal"
)

// WithPrincipal adds the authenticated user or guest to the request context
func WithPrincipal(r *http.Request, p onepager.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, p)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the principal from context. The zero Principal
// is returned when the auth middleware did not run.
func GetPrincipal(r *http.Request) onepager.Principal {
	p, _ := r.Context().Value(principalKey).(onepager.Principal)
	return p
}
