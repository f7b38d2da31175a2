package authz

// Module identifies a feature area that permissions are scoped to.
type Module string

const (
	ModuleDashboard  Module = "Dashboard"
	ModuleCases      Module = "Case Management"
	ModuleUsers      Module = "User Management"
	ModuleRoles      Module = "Role Management"
	ModuleAnimalCare Module = "Animal Care"
	ModuleFacilities Module = "Facility Management"
	ModuleInventory  Module = "Inventory"
	ModuleMedia      Module = "Media Library"
)

// Action identifies an operation inside a module that can be
// independently granted.
type Action string

const (
	ActionViewDashboard Action = "View Dashboard"
	ActionViewReports   Action = "View Reports"

	ActionViewCases   Action = "View Cases"
	ActionCreateCases Action = "Create Cases"
	ActionEditCases   Action = "Edit Cases"
	ActionDeleteCases Action = "Delete Cases"

	ActionViewUsers   Action = "View Users"
	ActionCreateUsers Action = "Create Users"
	ActionEditUsers   Action = "Edit Users"
	ActionDeleteUsers Action = "Delete Users"

	ActionViewRoles   Action = "View Roles"
	ActionCreateRoles Action = "Create Roles"
	ActionEditRoles   Action = "Edit Roles"
	ActionDeleteRoles Action = "Delete Roles"

	ActionViewCareRecords   Action = "View Records"
	ActionAddCareRecords    Action = "Add Records"
	ActionEditCareRecords   Action = "Edit Records"
	ActionDeleteCareRecords Action = "Delete Records"

	ActionViewFacilities   Action = "View Facilities"
	ActionAddFacilities    Action = "Add Facilities"
	ActionEditFacilities   Action = "Edit Facilities"
	ActionDeleteFacilities Action = "Delete Facilities"

	ActionViewItems        Action = "View Items"
	ActionAddItems         Action = "Add Items"
	ActionEditItems        Action = "Edit Items"
	ActionDeleteItems      Action = "Delete Items"
	ActionInventoryReports Action = "Inventory Reports"

	ActionViewMedia   Action = "View Media"
	ActionUploadMedia Action = "Upload Media"
	ActionEditMedia   Action = "Edit Media"
	ActionDeleteMedia Action = "Delete Media"
)

// moduleActions is the closed catalog of actions per module. Full-access
// sets are built from this table so a new action only needs to be added
// here.
var moduleActions = map[Module][]Action{
	ModuleDashboard:  {ActionViewDashboard, ActionViewReports},
	ModuleCases:      {ActionViewCases, ActionCreateCases, ActionEditCases, ActionDeleteCases},
	ModuleUsers:      {ActionViewUsers, ActionCreateUsers, ActionEditUsers, ActionDeleteUsers},
	ModuleRoles:      {ActionViewRoles, ActionCreateRoles, ActionEditRoles, ActionDeleteRoles},
	ModuleAnimalCare: {ActionViewCareRecords, ActionAddCareRecords, ActionEditCareRecords, ActionDeleteCareRecords},
	ModuleFacilities: {ActionViewFacilities, ActionAddFacilities, ActionEditFacilities, ActionDeleteFacilities},
	ModuleInventory:  {ActionViewItems, ActionAddItems, ActionEditItems, ActionDeleteItems, ActionInventoryReports},
	ModuleMedia:      {ActionViewMedia, ActionUploadMedia, ActionEditMedia, ActionDeleteMedia},
}

// Modules lists every known module in presentation order.
var Modules = []Module{
	ModuleDashboard,
	ModuleCases,
	ModuleUsers,
	ModuleRoles,
	ModuleAnimalCare,
	ModuleFacilities,
	ModuleInventory,
	ModuleMedia,
}

// ActionsFor returns the catalog of actions for a module.
func ActionsFor(module Module) []Action {
	actions := moduleActions[module]
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// ActionPermission is a single grant inside a module.
type ActionPermission struct {
	Name    Action `json:"name"`
	Enabled bool   `json:"enabled"`
}

// ModulePermission groups the grants of one module. Action names are
// unique within a module.
type ModulePermission struct {
	Module  Module             `json:"module"`
	Actions []ActionPermission `json:"actions"`
}

// PermissionSet is an ordered list of module grants. Module keys are
// unique; an absent module or action means denied.
type PermissionSet []ModulePermission

// Role is one of the fixed role names a user can hold.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleStaff        Role = "staff"
	RoleVolunteer    Role = "volunteer"
	RolePhotographer Role = "photographer"
)

var roleNames = map[string]Role{
	string(RoleAdmin):        RoleAdmin,
	string(RoleDoctor):       RoleDoctor,
	string(RoleStaff):        RoleStaff,
	string(RoleVolunteer):    RoleVolunteer,
	string(RolePhotographer): RolePhotographer,
}

// ParseRole resolves a stored role string, case-insensitively. Unknown
// names report false so callers can fall back to a default.
func ParseRole(name string) (Role, bool) {
	role, ok := roleNames[normalize(name)]
	return role, ok
}

// Principal is the resolved, permission-bearing representation of the
// authenticated user for the current session. It is immutable once built.
type Principal struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"displayName"`
	Email       string        `json:"email"`
	Role        Role          `json:"role"`
	Permissions PermissionSet `json:"permissions"`
}
