package middleware

import (
	"net/http"

	"github.com/ead/authuser/internal/observability"
	"github.com/ead/authuser/security"
	"github.com/ead/authuser/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Authorization rejects requests whose security context does not satisfy a
// route's requirements. It is the only layer that answers 401 and 403.
type Authorization struct {
	logger *zap.Logger
}

// NewAuthorization creates a new Authorization middleware set
func NewAuthorization(logger *zap.Logger) *Authorization {
	return &Authorization{logger: logger}
}

// RequireAuthenticated rejects anonymous requests with 401
func (a *Authorization) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := security.FromContext(r.Context()); !ok {
			observability.ForRequest(r.Context(), a.logger).Debug("anonymous request rejected",
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole requires an authenticated principal holding at least one of roles
func (a *Authorization) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.ForRequest(r.Context(), a.logger)

			sc, ok := security.FromContext(r.Context())
			if !ok {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if !sc.Principal.HasAnyAuthority(roles...) {
				logger.Warn("insufficient permissions",
					zap.String("user_id", sc.Principal.ID.String()),
					zap.Strings("required_roles", roles),
					zap.Strings("authorities", sc.Authorities))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrRole lets a principal act on the resource identified by the
// URL parameter param only when it is their own id, unless they hold one of
// roles.
func (a *Authorization) RequireSelfOrRole(param string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc, ok := security.FromContext(r.Context())
			if !ok {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if sc.Principal.HasAnyAuthority(roles...) || chi.URLParam(r, param) == sc.Principal.ID.String() {
				next.ServeHTTP(w, r)
				return
			}

			observability.ForRequest(r.Context(), a.logger).Warn("access to another user's resource denied",
				zap.String("user_id", sc.Principal.ID.String()),
				zap.String("target", chi.URLParam(r, param)))
			_ = utils.WriteForbidden(w, "Insufficient permissions")
		})
	}
}
