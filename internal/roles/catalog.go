package roles

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/repository"
)

// Catalog is the durable role name to permission set mapping. Lookups and
// seeding are both best-effort: an unreachable store yields an absent
// result, never an error, so callers fall back to their hard-coded
// defaults instead of failing the session.
type Catalog struct {
	records *repository.Repository[RoleDefinition]
	logger  *slog.Logger
}

// NewCatalog constructs a Catalog over the roles collection.
func NewCatalog(store docstore.Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		records: repository.New[RoleDefinition](store, Collection, logger),
		logger:  logger,
	}
}

// FindByName resolves a role definition by name, case-insensitively.
// Absent and unreachable both report false.
func (c *Catalog) FindByName(ctx context.Context, name string) (RoleDefinition, bool) {
	for _, rec := range c.records.GetAll(ctx) {
		if strings.EqualFold(rec.Data.Name, name) {
			return rec.Data, true
		}
	}
	return RoleDefinition{}, false
}

// Get returns a stored role definition by record id. ErrNotFound
// surfaces so admin callers can distinguish a bad id from an outage.
func (c *Catalog) Get(ctx context.Context, id string) (repository.Record[RoleDefinition], error) {
	return c.records.Get(ctx, id)
}

// List returns every stored role definition with its envelope.
func (c *Catalog) List(ctx context.Context) []repository.Record[RoleDefinition] {
	return c.records.GetAll(ctx)
}

// UpdatePermissions replaces the permission set of a stored role.
func (c *Catalog) UpdatePermissions(ctx context.Context, id string, set authz.PermissionSet) error {
	return c.records.Update(ctx, id, map[string]any{"permissions": set})
}

// Create stores a new role definition. Administrative path; rejections
// surface to the caller.
func (c *Catalog) Create(ctx context.Context, def RoleDefinition) (string, error) {
	return c.records.Create(ctx, def)
}

// EnsureBuiltInRoles seeds the canonical built-in roles, checking each by
// name before inserting so repeated calls stay idempotent. A concurrent
// seeder can still race a duplicate in; the first lookup wins from then
// on, so that is tolerated rather than locked against. Store failures are
// logged and swallowed; seeding stays best-effort.
func (c *Catalog) EnsureBuiltInRoles(ctx context.Context) {
	for _, role := range authz.BuiltInRoles {
		if _, exists := c.FindByName(ctx, string(role)); exists {
			continue
		}
		set, ok := authz.BuiltInRolePermissions(role)
		if !ok {
			continue
		}
		if _, err := c.records.Create(ctx, RoleDefinition{Name: string(role), Permissions: set}); err != nil {
			c.logger.Warn("seed built-in role",
				slog.String("role", string(role)),
				slog.Any("error", err))
		}
	}
}
