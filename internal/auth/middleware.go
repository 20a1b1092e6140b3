package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pametni-paketnik/locker-api/internal/api"
	"github.com/pametni-paketnik/locker-api/internal/config"
)

// Define a custom type for context keys
type contextKey string

const (
	// ClaimsContextKey is the key used to store the token claims in the context
	ClaimsContextKey contextKey = "claims"
)

type AuthMiddleware struct {
	config *config.AuthConfig
}

func NewAuthMiddleware(config *config.AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{
		config: config,
	}
}

// RequireAuth validates the bearer token and attaches its claims to the
// request context. The header must have the exact form "Bearer <token>".
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			api.Error(w, http.StatusUnauthorized, "access denied, login required")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := validateToken(token, m.config.JWTSecret)
		if err != nil {
			api.Error(w, http.StatusUnauthorized, "invalid token, please log in again")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin denies non-admin callers. It must be composed after
// RequireAuth; without claims in the context it denies as well.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		if err != nil || !claims.IsAdmin {
			api.Error(w, http.StatusForbidden, "access denied, administrator privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaimsFromContext returns the token claims attached by RequireAuth.
func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	if !ok {
		return nil, errors.New("claims not found in context")
	}
	return claims, nil
}

func validateToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
