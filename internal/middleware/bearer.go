package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
	"github.com/atinyakov/TaskKeeper/internal/logger"
	"github.com/atinyakov/TaskKeeper/internal/models"
	"go.uber.org/zap"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth is a middleware that enforces token authentication.
//
// It expects an "Authorization: Bearer <token>" header and asks verifier to
// resolve the token. On success the user is stored in the request context and
// the request logger is enriched with the caller identity. A rejected token
// is answered with 401, any other verifier failure with 500, and next is never
// called in either case.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing or malformed authorization header")
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if errors.Is(err, apperrors.ErrUnauthorized) {
				unauthorized(w, "invalid or expired token")
				return
			}
			if err != nil {
				logger.FromContext(r.Context()).Error("token verification failed", zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, apperrors.Message(err))
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = logger.With(ctx, zap.String("user_id", user.ID), zap.String("username", user.Username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the authenticated user from the request
// context. Returns nil if the request was not authenticated.
func GetUserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

// GetUserIDFromContext returns the authenticated user's id, or an empty
// string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	if u := GetUserFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}

// WithUser returns a copy of ctx carrying u, as BearerAuth does.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="taskkeeper"`)
	writeJSONError(w, http.StatusUnauthorized, msg)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
