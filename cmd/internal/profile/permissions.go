package profile

// Product modules gated by the package tier.
const (
	ModuleDashboard  = "dashboard"
	ModuleReports    = "reports"
	ModuleCounseling = "counseling"
)

// PermissionsForTier returns the access permissions granted by a package tier.
// Unknown tiers get the tier-1 set. The returned slice is never shared.
func PermissionsForTier(tier int) []AccessPermission {
	var modules []string
	switch tier {
	case 2:
		modules = []string{ModuleDashboard, ModuleReports}
	case 3:
		modules = []string{ModuleDashboard, ModuleReports, ModuleCounseling}
	default:
		modules = []string{ModuleDashboard}
	}

	out := make([]AccessPermission, 0, len(modules))
	for _, m := range modules {
		out = append(out, AccessPermission{Module: m, Access: true})
	}
	return out
}
