package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	_ "github.com/vb-entreprise/rrsa-server/internal/testing/guard"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("CSRF_SECRET", "csrf-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "development", cfg.AppEnv)
	require.False(t, cfg.IsProduction())
	require.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	require.Equal(t, authz.RoleAdmin, cfg.DefaultRoleValue())
	require.True(t, cfg.RepairQueueEnabled)
}

func TestLoadConfigRejectsMissingSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigValidatesDefaultRole(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEFAULT_ROLE", "superuser")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("DEFAULT_ROLE", "Volunteer")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, authz.RoleVolunteer, cfg.DefaultRoleValue())
}

func TestInTestModeRefresh(t *testing.T) {
	t.Setenv("RRSA_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())
}
