package authz

// BuiltInRoles are the roles seeded into the role catalog on first start.
// Volunteer is a valid role but has no seeded grants.
var BuiltInRoles = []Role{RoleAdmin, RoleDoctor, RoleStaff, RolePhotographer}

// FullAccess returns a set enabling every action of every module. This is
// the canonical admin grant and is also the hard-coded fallback when the
// role catalog is unreachable.
func FullAccess() PermissionSet {
	set := make(PermissionSet, 0, len(Modules))
	for _, module := range Modules {
		set = append(set, grant(module, moduleActions[module]...))
	}
	return set
}

// EmergencyAccess returns the minimal set handed to the operator when
// bootstrap fails unexpectedly: enough to see the dashboard and the user
// list, nothing more.
func EmergencyAccess() PermissionSet {
	return PermissionSet{
		grant(ModuleDashboard, ActionViewDashboard),
		grant(ModuleUsers, ActionViewUsers),
	}
}

// BuiltInRolePermissions returns the canonical grant table for a built-in
// role. Roles without a seeded table report false.
func BuiltInRolePermissions(role Role) (PermissionSet, bool) {
	switch role {
	case RoleAdmin:
		return FullAccess(), true
	case RoleDoctor:
		return PermissionSet{
			grant(ModuleDashboard, ActionViewDashboard, ActionViewReports),
			grant(ModuleCases, ActionViewCases, ActionCreateCases, ActionEditCases),
			grant(ModuleAnimalCare, ActionViewCareRecords, ActionAddCareRecords, ActionEditCareRecords),
			grant(ModuleMedia, ActionViewMedia, ActionUploadMedia, ActionEditMedia),
		}, true
	case RoleStaff:
		return PermissionSet{
			grant(ModuleDashboard, ActionViewDashboard, ActionViewReports),
			grant(ModuleCases, ActionViewCases, ActionCreateCases),
			grant(ModuleAnimalCare, ActionViewCareRecords, ActionAddCareRecords),
			grant(ModuleFacilities, ActionViewFacilities, ActionAddFacilities, ActionEditFacilities),
			grant(ModuleInventory, ActionViewItems, ActionAddItems),
		}, true
	case RolePhotographer:
		return PermissionSet{
			grant(ModuleDashboard, ActionViewDashboard),
			grant(ModuleMedia, ActionViewMedia, ActionUploadMedia, ActionEditMedia),
		}, true
	default:
		return nil, false
	}
}

func grant(module Module, actions ...Action) ModulePermission {
	mp := ModulePermission{Module: module, Actions: make([]ActionPermission, 0, len(actions))}
	for _, action := range actions {
		mp.Actions = append(mp.Actions, ActionPermission{Name: action, Enabled: true})
	}
	return mp
}
