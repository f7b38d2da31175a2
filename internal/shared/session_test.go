package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/shared"
	_ "github.com/vb-entreprise/rrsa-server/testing"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func commit(t *testing.T, sm *shared.SessionManager, sess *shared.Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestSessionPrincipalRoundTrip(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Nil(t, sess.Principal())

	principal := &authz.Principal{
		ID:          "subj-1",
		DisplayName: "Jane",
		Email:       "jane@shelter.org",
		Role:        authz.RoleStaff,
		Permissions: authz.PermissionSet{
			{Module: authz.ModuleCases, Actions: []authz.ActionPermission{
				{Name: authz.ActionViewCases, Enabled: true},
			}},
		},
	}
	require.NoError(t, sess.SetPrincipal(principal))
	cookie := commit(t, sm, sess)

	nextReq := httptest.NewRequest(http.MethodGet, "/", nil)
	nextReq.AddCookie(cookie)
	restored, err := sm.Load(ctx, nextReq)
	require.NoError(t, err)

	p := restored.Principal()
	require.NotNil(t, p)
	require.Equal(t, "subj-1", p.ID)
	require.Equal(t, authz.RoleStaff, p.Role)
	require.True(t, p.Permissions.Allows(authz.ModuleCases, authz.ActionViewCases))
	require.Equal(t, "subj-1", restored.SubjectID())
}

func TestDestroyClearsPrincipalAndCookie(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, sess.SetPrincipal(&authz.Principal{ID: "subj-1", Role: authz.RoleAdmin}))
	cookie := commit(t, sm, sess)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	sess, err = sm.Load(ctx, req)
	require.NoError(t, err)
	sm.Destroy(sess)
	require.Nil(t, sess.Principal())

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, -1, cookies[0].MaxAge)

	// The backing record is gone; presenting the old cookie yields a
	// fresh unauthenticated session.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookie)
	sess, err = sm.Load(ctx, again)
	require.NoError(t, err)
	require.Nil(t, sess.Principal())
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm := newSessionManager(t)
	csrf := shared.NewCSRFManager("csrfsecret")
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	same, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, token, same, "token is stable per session")

	require.NoError(t, csrf.VerifyToken(ctx, sess, token))
	require.ErrorIs(t, csrf.VerifyToken(ctx, sess, "forged"), shared.ErrCSRFTokenMismatch)
	require.ErrorIs(t, csrf.VerifyToken(ctx, &shared.Session{}, token), shared.ErrCSRFTokenMissing)
}
