package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fintrack-server/src/auth"
)

type contextKey int

const userIDKey contextKey = iota

// WithUserID returns ctx carrying the authenticated user's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id set by JWTAuthMiddleware, or "" if
// the request never passed the guard.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// JWTAuthMiddleware verifies the Authorization bearer token and attaches the
// resolved user id to the request context. It never touches the database;
// the token's embedded id is trusted until expiry.
func JWTAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				rejectJSON(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				rejectJSON(w, http.StatusUnauthorized, "Invalid token format.")
				return
			}

			userID, err := auth.UserIDFromToken(parts[1], secret)
			if err != nil {
				rejectJSON(w, http.StatusUnauthorized, "Invalid token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func rejectJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
