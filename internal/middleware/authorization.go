package middleware

import (
	"net/http"
	"slices"

	"go.uber.org/zap"
)

// RequireScope rejects authenticated requests whose token lacks scope. It
// must run after AuthMiddleware.
func RequireScope(scope string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scopes := GetScopes(r.Context())
			if !slices.Contains(scopes, scope) {
				sub, _ := GetSubject(r.Context())
				logger.Warn("Token lacks required scope",
					zap.String("subject", sub),
					zap.String("required", scope),
					zap.Strings("granted", scopes),
				)
				RespondWithError(w, http.StatusForbidden, CodeForbidden, "insufficient scope")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteMethods guards mutating requests with the write scope and lets reads through
func WriteMethods(logger *zap.Logger) func(http.Handler) http.Handler {
	requireWrite := RequireScope(ScopeWrite, logger)
	return func(next http.Handler) http.Handler {
		guarded := requireWrite(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				guarded.ServeHTTP(w, r)
			}
		})
	}
}
