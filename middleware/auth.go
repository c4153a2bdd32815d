package middleware

import (
	"context"
	"net/http"
	"strings"

	"foodgram/utils"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// AuthMiddleware verifies JWT tokens and attaches user information to the context.
// Requests without a valid token are rejected.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header missing")
			return
		}
		claims, ok := parseHeader(w, authHeader)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserContextKey, claims)))
	})
}

// OptionalAuthMiddleware attaches the user when a token is sent and lets
// anonymous requests through. A malformed or invalid token is still rejected.
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, ok := parseHeader(w, authHeader)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserContextKey, claims)))
	})
}

func parseHeader(w http.ResponseWriter, authHeader string) (*utils.Claims, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		unauthorized(w, "Invalid Authorization header format")
		return nil, false
	}

	claims, err := utils.ParseJWT(parts[1])
	if err != nil {
		unauthorized(w, "Invalid token")
		return nil, false
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		unauthorized(w, "Invalid token subject")
		return nil, false
	}
	return claims, true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		utils.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// CurrentUser returns the authenticated user's ID, if any
func CurrentUser(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*utils.Claims)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
