package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
)

type contextKey string

const userIDKey contextKey = "userID"

const (
	msgAuthRequired = "Authentication required"
	msgInvalidToken = "Invalid or expired token"
)

// JWTAuth returns middleware that requires a valid Bearer token in the Authorization header.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			userID, ok := identify(token, secret)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalJWTAuth returns middleware that attaches the user ID when a valid Bearer
// token is present. Requests without a token, or with an invalid one, pass through
// anonymously.
func OptionalJWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := identify(bearerToken(r), secret); ok {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken returns the Authorization header with a leading "Bearer " removed.
func bearerToken(r *http.Request) string {
	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

// identify resolves a token to a user ID. An empty or invalid token yields ok=false.
func identify(token, secret string) (string, bool) {
	if token == "" {
		return "", false
	}
	claims, err := crypto.ValidateToken(token, secret)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

// WithUserID returns a copy of ctx carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
