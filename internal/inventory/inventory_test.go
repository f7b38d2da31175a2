package inventory_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/inventory"
	_ "github.com/vb-entreprise/rrsa-server/testing"
)

func newInventoryRouter(store docstore.Store) http.Handler {
	handler := inventory.NewHandler(nil, store, authz.Middleware{})
	r := chi.NewRouter()
	r.Route("/api/inventory", handler.MountRoutes)
	return r
}

func asRole(req *http.Request, role authz.Role) *http.Request {
	set, ok := authz.BuiltInRolePermissions(role)
	if !ok {
		set = authz.PermissionSet{}
	}
	p := &authz.Principal{ID: "subj-" + string(role), Role: role, Permissions: set}
	return req.WithContext(authz.ContextWithPrincipal(req.Context(), p))
}

func TestCreateItemValidation(t *testing.T) {
	router := newInventoryRouter(docstore.NewMemoryStore())

	req := asRole(httptest.NewRequest(http.MethodPost, "/api/inventory/", strings.NewReader(`{"name":"kibble","category":"food","quantity":-3}`)), authz.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = asRole(httptest.NewRequest(http.MethodPost, "/api/inventory/", strings.NewReader(`{"name":"kibble","category":"food","quantity":10,"unit":"kg"}`)), authz.RoleAdmin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateItemValidatesPatch(t *testing.T) {
	router := newInventoryRouter(docstore.NewMemoryStore())

	req := asRole(httptest.NewRequest(http.MethodPost, "/api/inventory/", strings.NewReader(`{"name":"kibble","category":"food","quantity":10}`)), authz.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req = asRole(httptest.NewRequest(http.MethodPatch, "/api/inventory/"+created.ID, strings.NewReader(`{"quantity":-5}`)), authz.RoleAdmin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, "stock never goes negative through a patch")

	req = asRole(httptest.NewRequest(http.MethodPatch, "/api/inventory/"+created.ID, strings.NewReader(`{"quantity":0}`)), authz.RoleAdmin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "running out of stock is a legitimate state")
}

func TestDeleteItemRequiresPermission(t *testing.T) {
	router := newInventoryRouter(docstore.NewMemoryStore())

	req := asRole(httptest.NewRequest(http.MethodPost, "/api/inventory/", strings.NewReader(`{"name":"gauze","category":"medical","quantity":3}`)), authz.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req = asRole(httptest.NewRequest(http.MethodDelete, "/api/inventory/"+created.ID, nil), authz.RoleStaff)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
