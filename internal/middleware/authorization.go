package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequireOwnerParam lets the request through only when the chi URL parameter
// param equals the authenticated user's id. It must run after AuthMiddleware.
func RequireOwnerParam(param string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				logger.Warn("User id not found in context")
				RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ownerID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || ownerID != userID {
				logger.Warn("User attempted to access another user's resource",
					zap.Int64("user_id", userID),
					zap.String(param, chi.URLParam(r, param)),
				)
				RespondWithError(w, http.StatusForbidden, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
