package roles

import "github.com/vb-entreprise/rrsa-server/internal/authz"

// Collection holds role definition documents.
const Collection = "roles"

// RoleDefinition is a named, reusable bundle of module/action grants.
// Names match case-insensitively and are never deleted by the core.
type RoleDefinition struct {
	Name        string              `json:"name"`
	Permissions authz.PermissionSet `json:"permissions"`
}
