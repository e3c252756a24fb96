package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/mocks"
	"github.com/pagebound/bookstore-api/internal/service/auth"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		validateFn func(ctx context.Context, token string) (*auth.Claims, error)
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Authorization header required",
		},
		{
			name:       "malformed header",
			header:     "token-without-scheme",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:   "expired token",
			header: "Bearer expired",
			validateFn: func(ctx context.Context, token string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredToken
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "Token expired",
		},
		{
			name:   "invalid token",
			header: "Bearer garbage",
			validateFn: func(ctx context.Context, token string) (*auth.Claims, error) {
				return nil, auth.ErrInvalidToken
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid token",
		},
		{
			name:   "valid token",
			header: "Bearer good",
			validateFn: func(ctx context.Context, token string) (*auth.Claims, error) {
				return &auth.Claims{UserID: userID, Role: domain.RoleManager}, nil
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jwtService := &mocks.MockJWTService{ValidateTokenFn: tt.validateFn}
			mw := NewAuthMiddleware(jwtService)

			var gotID uuid.UUID
			var gotRole domain.Role
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = GetUserID(r)
				gotRole, _ = GetRole(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				var resp shared.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.wantError, resp.Error)
				return
			}
			assert.Equal(t, userID, gotID)
			assert.Equal(t, domain.RoleManager, gotRole)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		role       domain.Role
		haveRole   bool
		allowed    []domain.Role
		wantStatus int
	}{
		{
			name:       "allowed role passes",
			role:       domain.RoleManager,
			haveRole:   true,
			allowed:    []domain.Role{domain.RoleAdmin, domain.RoleManager},
			wantStatus: http.StatusOK,
		},
		{
			name:       "disallowed role is forbidden",
			role:       domain.RoleCustomer,
			haveRole:   true,
			allowed:    []domain.Role{domain.RoleAdmin, domain.RoleManager},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing role is unauthorized",
			haveRole:   false,
			allowed:    []domain.Role{domain.RoleAdmin},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodDelete, "/books/some-id", nil)
			if tt.haveRole {
				ctx := context.WithValue(req.Context(), shared.RoleContextKey, tt.role)
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()
			RequireRoles(tt.allowed...)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
