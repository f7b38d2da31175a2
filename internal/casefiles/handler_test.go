package casefiles_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/casefiles"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	_ "github.com/vb-entreprise/rrsa-server/testing"
)

func newCasesRouter(store docstore.Store) http.Handler {
	handler := casefiles.NewHandler(nil, casefiles.NewServiceFromStore(store, nil), authz.Middleware{})
	r := chi.NewRouter()
	r.Route("/api/cases", handler.MountRoutes)
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

func TestCreateCaseRequiresPermission(t *testing.T) {
	router := newCasesRouter(docstore.NewMemoryStore())
	body := `{"animalName":"Rex","species":"dog"}`

	req := httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous create denied")

	req = asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(body)), authz.RolePhotographer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code, "photographer cannot create cases")

	req = asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(body)), authz.RoleStaff)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID         string `json:"id"`
		CaseNumber string `json:"caseNumber"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "CS-0000001", created.CaseNumber)
	require.NotEmpty(t, created.ID)
}

func TestDeleteCaseStaffForbidden(t *testing.T) {
	store := docstore.NewMemoryStore()
	router := newCasesRouter(store)

	req := asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(`{"animalName":"Rex","species":"dog"}`)), authz.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req = asRole(httptest.NewRequest(http.MethodDelete, "/api/cases/"+created.ID, nil), authz.RoleStaff)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = asRole(httptest.NewRequest(http.MethodDelete, "/api/cases/"+created.ID, nil), authz.RoleAdmin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetCaseNotFound(t *testing.T) {
	router := newCasesRouter(docstore.NewMemoryStore())

	req := asRole(httptest.NewRequest(http.MethodGet, "/api/cases/unknown-id", nil), authz.RoleDoctor)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCaseValidation(t *testing.T) {
	router := newCasesRouter(docstore.NewMemoryStore())

	req := asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(`{"species":"dog"}`)), authz.RoleStaff)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCaseAdmittedDate(t *testing.T) {
	router := newCasesRouter(docstore.NewMemoryStore())

	body := `{"animalName":"Rex","species":"dog","admittedDate":"15-08-2026"}`
	req := asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(body)), authz.RoleStaff)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, "dates are year first")

	body = `{"animalName":"Rex","species":"dog","admittedDate":"2026-08-15"}`
	req = asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(body)), authz.RoleStaff)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req = asRole(httptest.NewRequest(http.MethodGet, "/api/cases/"+created.ID, nil), authz.RoleStaff)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched struct {
		Data struct {
			AdmittedDate string `json:"admittedDate"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, "2026-08-15", fetched.Data.AdmittedDate)
}

func TestUpdateCaseValidatesPatch(t *testing.T) {
	router := newCasesRouter(docstore.NewMemoryStore())

	req := asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(`{"animalName":"Rex","species":"dog"}`)), authz.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req = asRole(httptest.NewRequest(http.MethodPatch, "/api/cases/"+created.ID, strings.NewReader(`{"admittedDate":"not-a-date"}`)), authz.RoleAdmin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = asRole(httptest.NewRequest(http.MethodPatch, "/api/cases/"+created.ID, strings.NewReader(`{"status":"closed"}`)), authz.RoleAdmin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCaseStoreOutage(t *testing.T) {
	store := docstore.NewMemoryStore()
	router := newCasesRouter(store)
	store.SetFailure(docstore.ErrUnavailable)

	req := asRole(httptest.NewRequest(http.MethodPost, "/api/cases/", strings.NewReader(`{"animalName":"Rex","species":"dog"}`)), authz.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadGateway, rec.Code, "failed writes surface, reads degrade")
}
