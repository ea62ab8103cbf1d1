package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/theroundhq/marketplace/internal/models"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionFromContext returns the authenticated identity stored by the
// Authenticate middleware.
func SessionFromContext(ctx context.Context) (*models.SessionUser, bool) {
	su, ok := ctx.Value(sessionKey).(*models.SessionUser)
	return su, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// Authenticate verifies the session token and stores the identity in the
// request context. Requests without a valid token are rejected.
func (h *HTTPHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.respondError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}

		su, err := h.authService.VerifyToken(r.Context(), token)
		if err != nil {
			h.respondError(w, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, su)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles admits only sessions that carry at least one of the given
// roles. Must run after Authenticate.
func (h *HTTPHandler) RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			su, ok := SessionFromContext(r.Context())
			if !ok {
				h.respondError(w, http.StatusUnauthorized, "Authentication required", nil)
				return
			}
			if !su.HasAnyRole(roles...) {
				h.respondError(w, http.StatusForbidden, "Insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireWebhookToken guards the provider callback with a shared bearer
// secret, compared in constant time.
func (h *HTTPHandler) RequireWebhookToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if h.webhookToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) != 1 {
			h.respondError(w, http.StatusUnauthorized, "Invalid webhook token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
