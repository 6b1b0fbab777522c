package session

import "storefront/internal/domain"

// Capabilities is the per-role capability set consumed by screens, replacing
// ad hoc role string comparisons.
type Capabilities struct {
	CanScan          bool
	CanViewCart      bool
	CanViewProfile   bool
	CanViewDashboard bool
	CanEditStock     bool
	CanManageUsers   bool
	CanViewReports   bool
}

// Authorization maps a role to its capabilities. Managers keep the client
// capabilities; the manager tabs include the scanner and cart.
func Authorization(role domain.Role) Capabilities {
	caps := Capabilities{
		CanScan:        true,
		CanViewCart:    true,
		CanViewProfile: true,
	}
	if role == domain.RoleManager {
		caps.CanViewDashboard = true
		caps.CanEditStock = true
		caps.CanManageUsers = true
		caps.CanViewReports = true
	}
	return caps
}
