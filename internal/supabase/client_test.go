package supabase_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/supabase"
)

func newRoleServer(t *testing.T, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		requests = append(requests, r.Method+" "+r.URL.Path+" "+string(payload))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestGetUserRole(t *testing.T) {
	server, requests := newRoleServer(t, `[{"user_id":"u-1","role":"admin"}]`)
	client, err := supabase.NewClient(&config.Config{SupabaseURL: server.URL, SupabasePublishableKey: "anon"})
	require.NoError(t, err)

	role, err := client.GetUserRole(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
	require.Len(t, *requests, 1)
	assert.Contains(t, (*requests)[0], "GET /rest/v1/user_roles")
}

func TestGetUserRole_MissingRowIsGuest(t *testing.T) {
	server, _ := newRoleServer(t, `[]`)
	client, err := supabase.NewClient(&config.Config{SupabaseURL: server.URL, SupabasePublishableKey: "anon"})
	require.NoError(t, err)

	role, err := client.GetUserRole(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, role)
}

func TestAssignRole(t *testing.T) {
	server, requests := newRoleServer(t, `[{"user_id":"u-1","role":"user"}]`)
	client, err := supabase.NewClient(&config.Config{SupabaseURL: server.URL, SupabasePublishableKey: "anon"})
	require.NoError(t, err)

	require.NoError(t, client.AssignRole(context.Background(), "u-1", models.RoleUser))
	require.Len(t, *requests, 1)
	assert.Contains(t, (*requests)[0], "POST /rest/v1/user_roles")
	assert.Contains(t, (*requests)[0], `"role":"user"`)
}
