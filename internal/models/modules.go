package models

// Module identifiers for the optional feature areas.
const (
	ModuleCalendar    = "calendar"
	ModuleTodos       = "todos"
	ModuleTaskPlanner = "taskplanner"
	ModuleCheckIns    = "checkins"
	ModuleFinance     = "finance"
	ModuleGoals       = "goals"
	ModuleChat        = "chat"
	ModuleWishlist    = "wishlist"
	ModuleLocation    = "location"
	ModulePlants      = "plants"
	ModuleKitchen     = "kitchen"
)

// ModuleSet maps module identifiers to their enabled state.
type ModuleSet map[string]bool

// DefaultModuleSet is the provisioning default applied whenever a user has no
// stored module configuration. A missing column or empty JSON value is
// treated identically to "no configuration".
func DefaultModuleSet() ModuleSet {
	return ModuleSet{
		ModuleCalendar:    true,
		ModuleTodos:       true,
		ModuleTaskPlanner: true,
		ModuleCheckIns:    false,
		ModuleFinance:     false,
		ModuleGoals:       false,
		ModuleChat:        false,
		ModuleWishlist:    false,
		ModuleLocation:    false,
		ModulePlants:      false,
		ModuleKitchen:     false,
	}
}

// KnownModules lists every module identifier the application understands.
func KnownModules() []string {
	return []string{
		ModuleCalendar,
		ModuleTodos,
		ModuleTaskPlanner,
		ModuleCheckIns,
		ModuleFinance,
		ModuleGoals,
		ModuleChat,
		ModuleWishlist,
		ModuleLocation,
		ModulePlants,
		ModuleKitchen,
	}
}

// IsKnownModule reports whether the identifier names a supported module.
func IsKnownModule(name string) bool {
	for _, known := range KnownModules() {
		if known == name {
			return true
		}
	}
	return false
}
