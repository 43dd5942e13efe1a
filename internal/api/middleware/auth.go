package middleware

import (
	"context"
	"net/http"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
)

type principalKey struct{}

// AuthMiddleware resolves the authenticated principal from the trusted
// identity headers set by the gateway. Requests without both headers
// pass through unauthenticated; handlers that require a principal reject
// them via PrincipalFromContext.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		role, ok := entities.ParseRole(r.Header.Get("X-User-Role"))
		if userID != "" && ok {
			ctx := context.WithValue(r.Context(), principalKey{}, entities.Principal{
				ID:   userID,
				Role: role,
			})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext returns the request's principal, if any
func PrincipalFromContext(ctx context.Context) (entities.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(entities.Principal)
	return principal, ok
}

// WithPrincipal returns a context carrying the given principal. Test
// helper and internal callers only.
func WithPrincipal(ctx context.Context, principal entities.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}
