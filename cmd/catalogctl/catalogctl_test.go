package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpupo63/video-catalog-backend/api"
	"github.com/rpupo63/video-catalog-backend/config"
	"github.com/rpupo63/video-catalog-backend/database"
	"github.com/rpupo63/video-catalog-backend/models"
	"github.com/rpupo63/video-catalog-backend/services/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminOnly struct{}

func (adminOnly) ResolveEmail(_ context.Context, token string) (string, error) {
	if token == "admin-token" {
		return "admin@example.com", nil
	}
	return "", identity.ErrRejected
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := api.NewRouter(database.NewInMemory(), adminOnly{}, identity.NewOAuthExchanger(config.Identity{}),
		api.WithConfig(&config.Config{AdminEmail: "admin@example.com", PublicSiteURL: "/"}),
		api.WithAccessLog(nil))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddEditDelete(t *testing.T) {
	srv := newServer(t)
	base := []string{"--server", srv.URL, "--token", "admin-token"}

	out, err := run(t, append([]string{"add", "--url", "https://youtu.be/abc123456", "--title", "CLI talk", "--tags", "go,cli"}, base...)...)
	require.NoError(t, err)

	var created models.VideoEntry
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "CLI talk", created.Title)
	assert.Equal(t, []string{"go", "cli"}, []string(created.Tags))

	out, err = run(t, append([]string{"edit", created.ID.String(), "--rating", "5"}, base...)...)
	require.NoError(t, err)

	var updated models.VideoEntry
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "CLI talk", updated.Title)

	out, err = run(t, "list", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "CLI talk")
	assert.Contains(t, out, "1-1 of 1")

	_, err = run(t, append([]string{"delete", created.ID.String()}, base...)...)
	require.NoError(t, err)

	_, err = run(t, "get", created.ID.String(), "--server", srv.URL)
	assert.Error(t, err)
}

func TestEditNeedsAField(t *testing.T) {
	_, err := run(t, "edit", "8f6c3a0e-8c39-4f5e-9a55-3c1d1f0b1e11", "--token", "admin-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestMutationsRejectNonAdminToken(t *testing.T) {
	srv := newServer(t)

	_, err := run(t, "add", "--url", "https://youtu.be/abc123456", "--title", "x", "--server", srv.URL, "--token", "someone")
	require.Error(t, err)

	_, err = run(t, "add", "--url", "https://youtu.be/abc123456", "--title", "x", "--server", srv.URL, "--token", "")
	require.Error(t, err)
}

func TestValidationFailurePrintsFields(t *testing.T) {
	srv := newServer(t)

	_, err := run(t, "add", "--url", "https://youtu.be/abc123456", "--title", "x",
		"--memo", strings.Repeat("m", 2001), "--server", srv.URL, "--token", "admin-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memo:")
}

func TestAdminCommand(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "admin", "--server", srv.URL, "--token", "admin-token")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAdmin":true}`, out)

	out, err = run(t, "admin", "--server", srv.URL, "--token", "nope")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAdmin":false}`, out)
}
