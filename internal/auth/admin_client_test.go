package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdminAPI is an in-memory stand-in for the Supabase Admin users endpoints.
type fakeAdminAPI struct {
	mu    sync.Mutex
	users []AdminUser
}

func (f *fakeAdminAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != "service-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
		_ = json.NewEncoder(w).Encode(listUsersResponse{Users: f.users})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/admin/users":
		var req CreateUserRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user := AdminUser{ID: "user-" + req.Email, Email: req.Email, Role: "authenticated"}
		f.users = append(f.users, user)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(user)
	case r.Method == http.MethodDelete:
		id := r.URL.Path[len("/auth/v1/admin/users/"):]
		for i, u := range f.users {
			if u.ID == id {
				f.users = append(f.users[:i], f.users[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestAdminClientEnsureUser(t *testing.T) {
	api := &fakeAdminAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewAdminClient(srv.URL, "service-key")
	ctx := context.Background()

	id, err := client.EnsureUser(ctx, "demo@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "user-demo@example.com", id)

	again, err := client.EnsureUser(ctx, "demo@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Len(t, api.users, 1)
}

func TestAdminClientDeleteUserByEmail(t *testing.T) {
	api := &fakeAdminAPI{users: []AdminUser{{ID: "u1", Email: "demo@example.com"}}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewAdminClient(srv.URL, "service-key")
	ctx := context.Background()

	require.NoError(t, client.DeleteUserByEmail(ctx, "demo@example.com"))
	assert.Empty(t, api.users)

	// Idempotent
	require.NoError(t, client.DeleteUserByEmail(ctx, "demo@example.com"))
}

func TestAdminClientSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(&fakeAdminAPI{})
	defer srv.Close()

	client := NewAdminClient(srv.URL, "wrong-key")

	_, err := client.FindUserIDByEmail(context.Background(), "demo@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
