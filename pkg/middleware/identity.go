package middleware

import (
	"net/http"

	"github.com/kunalsh/splitledger/internal/auth"
	"github.com/kunalsh/splitledger/internal/rbac"
	"github.com/kunalsh/splitledger/pkg/response"
)

// RequireIdentity extracts the authenticated identity forwarded by the
// identity provider (the gateway terminates the session and forwards
// X-User-Email / X-User-Role). Requests without an identity are rejected;
// unknown roles degrade to viewer.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get("X-User-Email")
		if email == "" {
			response.Unauthorized(w, "Authentication required")
			return
		}

		id := auth.Identity{
			Email: email,
			Role:  rbac.ParseRole(r.Header.Get("X-User-Role")),
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}
