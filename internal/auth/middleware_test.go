package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	svc := newTestService(t)
	middleware := NewAuthMiddleware(newTestConfig())

	validToken, err := svc.GenerateToken(&User{ID: "user-1", Username: "testuser"})
	require.NoError(t, err)

	otherConfig := newTestConfig()
	otherConfig.JWTSecret = "another-secret"
	otherSvc := NewService(otherConfig, newTestLogger(t), newMockRepository())
	foreignToken, err := otherSvc.GenerateToken(&User{ID: "user-1", Username: "testuser"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{
			name:       "missing header",
			authHeader: "",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "header without bearer prefix",
			authHeader: "Token " + validToken,
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "syntactically invalid token",
			authHeader: "Bearer not.a.token",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "token signed with a different secret",
			authHeader: "Bearer " + foreignToken,
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + validToken,
			wantCode:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClaims *Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, err := GetClaimsFromContext(r.Context())
				require.NoError(t, err)
				gotClaims = claims
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			middleware.RequireAuth(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, "user-1", gotClaims.UserID)
				assert.Equal(t, "testuser", gotClaims.Username)
			}
		})
	}
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	middleware := NewAuthMiddleware(newTestConfig())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		claims   *Claims
		wantCode int
	}{
		{
			name:     "no claims in context",
			claims:   nil,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "non-admin user",
			claims:   &Claims{UserID: "user-1", Username: "member"},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "admin user",
			claims:   &Claims{UserID: "user-2", Username: "admin", IsAdmin: true},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), ClaimsContextKey, tt.claims))
			}

			rec := httptest.NewRecorder()
			middleware.RequireAdmin(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
