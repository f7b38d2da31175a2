package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithPrincipal(p *Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), p))
	}
	return req
}

func TestRequirePermission(t *testing.T) {
	gate := Middleware{}
	protected := gate.RequirePermission(ModuleCases, ActionDeleteCases)(okHandler())

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, requestWithPrincipal(nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	staffSet, _ := BuiltInRolePermissions(RoleStaff)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, requestWithPrincipal(&Principal{ID: "s", Role: RoleStaff, Permissions: staffSet}))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, requestWithPrincipal(&Principal{ID: "a", Role: RoleAdmin, Permissions: FullAccess()}))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireModule(t *testing.T) {
	gate := Middleware{}
	protected := gate.RequireModule(ModuleMedia)(okHandler())

	photoSet, _ := BuiltInRolePermissions(RolePhotographer)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, requestWithPrincipal(&Principal{ID: "p", Role: RolePhotographer, Permissions: photoSet}))
	require.Equal(t, http.StatusOK, rec.Code)

	staffSet, _ := BuiltInRolePermissions(RoleStaff)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, requestWithPrincipal(&Principal{ID: "s", Role: RoleStaff, Permissions: staffSet}))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCurrentPrincipal(t *testing.T) {
	require.Nil(t, CurrentPrincipal(httptest.NewRequest(http.MethodGet, "/", nil)))

	p := &Principal{ID: "subj-1"}
	require.Equal(t, p, CurrentPrincipal(requestWithPrincipal(p)))
}
