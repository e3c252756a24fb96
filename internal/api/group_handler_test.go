package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/mocks"
)

type groupTestEnv struct {
	router *chi.Mux
	users  *mocks.MockUserStore

	admin    *domain.User
	manager  *domain.User
	crew     *domain.User
	customer *domain.User
}

func newGroupTestEnv(t *testing.T) *groupTestEnv {
	t.Helper()

	env := &groupTestEnv{users: mocks.NewMockUserStore()}
	env.admin = &domain.User{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin}
	env.manager = &domain.User{ID: uuid.New(), Email: "manager@example.com", Role: domain.RoleManager}
	env.crew = &domain.User{ID: uuid.New(), Email: "crew@example.com", Role: domain.RoleDelivery}
	env.customer = &domain.User{ID: uuid.New(), Email: "customer@example.com", Role: domain.RoleCustomer}
	for _, u := range []*domain.User{env.admin, env.manager, env.crew, env.customer} {
		env.users.Users[u.Email] = u
	}

	handler := NewGroupHandler(env.users)
	env.router = chi.NewRouter()
	env.router.Get("/groups/{group}/users", handler.List)
	env.router.Post("/groups/{group}/users", handler.Add)
	env.router.Delete("/groups/{group}/users/{userID}", handler.Remove)

	return env
}

func (env *groupTestEnv) doAs(t *testing.T, actor *domain.User, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, actor.ID)
	ctx = context.WithValue(ctx, shared.RoleContextKey, actor.Role)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req.WithContext(ctx))
	return w
}

func TestGroupList(t *testing.T) {
	t.Parallel()

	env := newGroupTestEnv(t)

	w := env.doAs(t, env.admin, http.MethodGet, "/groups/delivery/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var members []UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&members))
	require.Len(t, members, 1)
	assert.Equal(t, env.crew.Email, members[0].Email)
}

func TestGroupAdd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		actor      func(env *groupTestEnv) *domain.User
		group      string
		email      func(env *groupTestEnv) string
		wantStatus int
		wantRole   domain.Role
	}{
		{
			name:       "admin promotes customer to manager",
			actor:      func(env *groupTestEnv) *domain.User { return env.admin },
			group:      "manager",
			email:      func(env *groupTestEnv) string { return env.customer.Email },
			wantStatus: http.StatusCreated,
			wantRole:   domain.RoleManager,
		},
		{
			name:       "manager adds customer to delivery crew",
			actor:      func(env *groupTestEnv) *domain.User { return env.manager },
			group:      "delivery",
			email:      func(env *groupTestEnv) string { return env.customer.Email },
			wantStatus: http.StatusCreated,
			wantRole:   domain.RoleDelivery,
		},
		{
			name:       "manager may not touch the manager group",
			actor:      func(env *groupTestEnv) *domain.User { return env.manager },
			group:      "manager",
			email:      func(env *groupTestEnv) string { return env.customer.Email },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "customer may not manage groups",
			actor:      func(env *groupTestEnv) *domain.User { return env.customer },
			group:      "delivery",
			email:      func(env *groupTestEnv) string { return env.crew.Email },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin accounts are never demoted",
			actor:      func(env *groupTestEnv) *domain.User { return env.admin },
			group:      "delivery",
			email:      func(env *groupTestEnv) string { return env.admin.Email },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown email",
			actor:      func(env *groupTestEnv) *domain.User { return env.admin },
			group:      "manager",
			email:      func(env *groupTestEnv) string { return "nobody@example.com" },
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown group",
			actor:      func(env *groupTestEnv) *domain.User { return env.admin },
			group:      "wizards",
			email:      func(env *groupTestEnv) string { return env.customer.Email },
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newGroupTestEnv(t)
			email := tt.email(env)

			w := env.doAs(t, tt.actor(env), http.MethodPost, "/groups/"+tt.group+"/users",
				GroupMemberRequest{Email: email})
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusCreated {
				var resp UserResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, string(tt.wantRole), resp.Role)
				assert.Equal(t, tt.wantRole, env.users.Users[email].Role)
			}
		})
	}
}

func TestGroupRemove(t *testing.T) {
	t.Parallel()

	t.Run("removal returns user to customer role", func(t *testing.T) {
		t.Parallel()

		env := newGroupTestEnv(t)
		w := env.doAs(t, env.admin, http.MethodDelete,
			"/groups/delivery/users/"+env.crew.ID.String(), nil)
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, domain.RoleCustomer, env.users.Users[env.crew.Email].Role)
	})

	t.Run("user not in group", func(t *testing.T) {
		t.Parallel()

		env := newGroupTestEnv(t)
		w := env.doAs(t, env.admin, http.MethodDelete,
			"/groups/manager/users/"+env.crew.ID.String(), nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "User is not in this group", resp.Error)
	})

	t.Run("malformed user id", func(t *testing.T) {
		t.Parallel()

		env := newGroupTestEnv(t)
		w := env.doAs(t, env.admin, http.MethodDelete, "/groups/manager/users/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
