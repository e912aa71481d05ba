package middleware

import (
	"context"
	"net/http"

	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
)

// PermissionStore answers whether a role carries a permission.
type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

// RequirePermission gates a route on the session role. A denial names the
// missing permission in the error details.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)
			session, ok := GetSession(ctx)
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(ctx, session.Role, permission)
			switch {
			case err != nil:
				requestctx.Logger(ctx).Error("permission check failed", "role", session.Role, "permission", permission, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
			case !allowed:
				requestctx.Logger(ctx).Info("permission denied", "userId", session.UserID, "role", session.Role, "permission", permission, "path", r.URL.Path)
				api.FailWithDetails(w, http.StatusForbidden, "forbidden", "insufficient permissions", map[string]string{"permission": permission}, requestID)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
