package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/api"
)

// SessionChecker reports whether a session has been revoked since its token
// was issued. A nil checker trusts the token alone.
type SessionChecker interface {
	SessionActive(ctx context.Context, session auth.Session) (bool, error)
}

func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session := claims.Session()
			if sessions != nil {
				active, err := sessions.SessionActive(r.Context(), session)
				if err != nil {
					slog.Warn("session lookup failed", "session", session.SessionID, "err", err)
					api.Fail(w, http.StatusInternalServerError, "session_error", "session lookup failed", GetRequestID(r.Context()))
					return
				}
				if !active {
					next.ServeHTTP(w, r)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// RequireAuth rejects requests that carry no valid session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetSession(ctx context.Context) (auth.Session, bool) {
	return auth.SessionFrom(ctx)
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
