package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
)

func TestEnsureBuiltInRolesSeedsOnce(t *testing.T) {
	store := docstore.NewMemoryStore()
	catalog := NewCatalog(store, nil)
	ctx := context.Background()

	catalog.EnsureBuiltInRoles(ctx)
	require.Len(t, catalog.List(ctx), 4)

	catalog.EnsureBuiltInRoles(ctx)
	require.Len(t, catalog.List(ctx), 4, "seeding is idempotent")

	for _, role := range []string{"admin", "doctor", "staff", "photographer"} {
		_, found := catalog.FindByName(ctx, role)
		require.True(t, found, "missing seeded role %s", role)
	}
	_, found := catalog.FindByName(ctx, "volunteer")
	require.False(t, found, "volunteer is valid but never seeded")
}

func TestEnsureBuiltInRolesSurvivesOutage(t *testing.T) {
	store := docstore.NewMemoryStore()
	catalog := NewCatalog(store, nil)
	ctx := context.Background()

	store.SetFailure(docstore.ErrUnavailable)
	catalog.EnsureBuiltInRoles(ctx)
	store.SetFailure(nil)
	require.Empty(t, catalog.List(ctx), "failed seeding writes nothing")

	catalog.EnsureBuiltInRoles(ctx)
	require.Len(t, catalog.List(ctx), 4, "next run completes the seeding")
}

func TestFindByNameIsCaseInsensitive(t *testing.T) {
	catalog := NewCatalog(docstore.NewMemoryStore(), nil)
	ctx := context.Background()

	catalog.EnsureBuiltInRoles(ctx)

	def, found := catalog.FindByName(ctx, "ADMIN")
	require.True(t, found)
	require.Equal(t, "admin", def.Name)
	require.True(t, def.Permissions.Allows(authz.ModuleRoles, authz.ActionEditRoles))

	_, found = catalog.FindByName(ctx, "groundskeeper")
	require.False(t, found)
}

func TestFindByNameDuringOutageReportsAbsent(t *testing.T) {
	store := docstore.NewMemoryStore()
	catalog := NewCatalog(store, nil)
	ctx := context.Background()

	catalog.EnsureBuiltInRoles(ctx)
	store.SetFailure(docstore.ErrUnavailable)

	_, found := catalog.FindByName(ctx, "admin")
	require.False(t, found, "unreachable catalog reads as absent, not as an error")
}

func TestUpdatePermissions(t *testing.T) {
	catalog := NewCatalog(docstore.NewMemoryStore(), nil)
	ctx := context.Background()

	id, err := catalog.Create(ctx, RoleDefinition{
		Name: "volunteer",
		Permissions: authz.PermissionSet{
			{Module: authz.ModuleDashboard, Actions: []authz.ActionPermission{
				{Name: authz.ActionViewDashboard, Enabled: true},
			}},
		},
	})
	require.NoError(t, err)

	err = catalog.UpdatePermissions(ctx, id, authz.PermissionSet{
		{Module: authz.ModuleAnimalCare, Actions: []authz.ActionPermission{
			{Name: authz.ActionViewCareRecords, Enabled: true},
		}},
	})
	require.NoError(t, err)

	def, found := catalog.FindByName(ctx, "volunteer")
	require.True(t, found)
	require.True(t, def.Permissions.Allows(authz.ModuleAnimalCare, authz.ActionViewCareRecords))
	require.False(t, def.Permissions.Allows(authz.ModuleDashboard, authz.ActionViewDashboard))
}
