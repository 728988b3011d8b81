package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrap_CreatesAndPromotesAdmins(t *testing.T) {
	e := newTestEnv(t)

	w := e.doJSON(http.MethodPost, "/api/admin/bootstrap", "", `{"email":"root@example.com","name":"Root"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "admin", resp.User.Role)

	// an existing standard user gets promoted
	e.createUser(t, "ada@example.com", "Ada")
	w = e.doJSON(http.MethodPost, "/api/admin/bootstrap", "", `{"email":"ada@example.com","name":"Ada"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "admin", resp.User.Role)

	w = e.doJSON(http.MethodPost, "/api/admin/bootstrap", "", `{"email":"root@example.com"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBootstrap_DisabledInProduction(t *testing.T) {
	e := newTestEnv(t)
	e.cfg.Server.Environment = "production"

	w := e.doJSON(http.MethodPost, "/api/admin/bootstrap", "", `{"email":"root@example.com","name":"Root"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminUsers_ListRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	ada := e.createUser(t, "ada@example.com", "Ada")
	admin := e.createAdmin(t, "root@example.com", "Root")

	w := e.doJSON(http.MethodGet, "/api/admin/users", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.doJSON(http.MethodGet, "/api/admin/users", e.sessionFor(t, ada), "")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = e.doJSON(http.MethodGet, "/api/admin/users", e.sessionFor(t, admin), "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)

	// magic link fields never appear in API output
	require.NotContains(t, w.Body.String(), "magicLinkToken")
}
