package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go-market-auth/internal/model"
	"go-market-auth/internal/service"
)

type sessionVerifier interface {
	Verify(ctx context.Context, artifact string) (model.Session, error)
}

type contextKey string

const sessionContextKey contextKey = "session"

// AuthMiddleware gates handlers on a verified session, and optionally
// on role membership. Requests move Anonymous → Authenticated →
// Authorized; a failed step answers 401/403 without ever invoking the
// wrapped handler.
type AuthMiddleware struct {
	verifier sessionVerifier
}

func NewAuthMiddleware(verifier sessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireSession verifies the session cookie and attaches the resulting
// Session to the request context.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(service.SessionCookieName)
		if err != nil || cookie.Value == "" {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			return
		}

		session, err := m.verifier.Verify(r.Context(), cookie.Value)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles runs after RequireSession and rejects sessions whose
// role is outside the allow set.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}

			if _, allowed := roleSet[session.Role]; !allowed {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func SessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(model.Session)
	return session, ok
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: message, Code: code})
}
