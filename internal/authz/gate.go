package authz

import "strings"

// CanPerform reports whether the principal may execute the named action in
// the named module. Absence at any level is a denial; a nil principal is
// never authorized.
func CanPerform(p *Principal, module Module, action Action) bool {
	if p == nil {
		return false
	}
	return p.Permissions.Allows(module, action)
}

// CanAccessModule reports whether the principal has at least one enabled
// action in the module. Weaker than CanPerform on purpose: it decides
// whether a feature area is visible at all.
func CanAccessModule(p *Principal, module Module) bool {
	if p == nil {
		return false
	}
	return p.Permissions.AllowsModule(module)
}

// Allows reports whether the set enables the given module/action pair.
func (s PermissionSet) Allows(module Module, action Action) bool {
	for _, mp := range s {
		if mp.Module != module {
			continue
		}
		for _, ap := range mp.Actions {
			if ap.Name == action {
				return ap.Enabled
			}
		}
		return false
	}
	return false
}

// AllowsModule reports whether the set enables any action in the module.
func (s PermissionSet) AllowsModule(module Module) bool {
	for _, mp := range s {
		if mp.Module != module {
			continue
		}
		for _, ap := range mp.Actions {
			if ap.Enabled {
				return true
			}
		}
		return false
	}
	return false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
