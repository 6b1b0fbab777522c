package session

import "storefront/internal/domain"

// RouteGroup identifies the screen area the UI is currently in.
type RouteGroup string

const (
	// GroupAuth covers the login and register screens.
	GroupAuth RouteGroup = "auth"
	// GroupTabs covers every authenticated screen.
	GroupTabs RouteGroup = "tabs"
)

// Redirect targets.
const (
	RouteLogin     = "/auth/login"
	RouteHome      = "/tabs/home"
	RouteDashboard = "/tabs/dashboard"
)

// ComputeRedirect decides whether the current location is consistent with the
// session state. It is pure and safe to call on every state change: when the
// location already satisfies the state it returns ok=false, which is what
// prevents redirect loops.
func ComputeRedirect(current RouteGroup, s State) (target string, ok bool) {
	if s.Loading {
		return "", false
	}
	if !s.Authenticated() {
		if current != GroupAuth {
			return RouteLogin, true
		}
		return "", false
	}
	if current == GroupAuth {
		if s.Role() == domain.RoleManager {
			return RouteDashboard, true
		}
		return RouteHome, true
	}
	return "", false
}
