package middleware

import (
	"context"
	"net/http"
	"strings"

	"photo-inventory/internal/apperr"

	"go.uber.org/zap"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// IdentityResolver turns a bearer token into the id of the user it was
// issued for
type IdentityResolver interface {
	ResolveIdentity(token string) (int64, error)
}

// AuthMiddleware requires "Authorization: Bearer <token>" and stores the
// resolved user id in the request context
func AuthMiddleware(resolver IdentityResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			userID, err := resolver.ResolveIdentity(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if apperr.KindOf(err) != apperr.KindAuth {
					err = apperr.Auth("invalid token")
				}
				RespondWithAppError(w, logger, err)
				return
			}

			logger.Debug("User authenticated", zap.Int64("user_id", userID))

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
