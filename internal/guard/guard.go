// ABOUTME: Route guards gating navigation on the current session snapshot
// ABOUTME: Guards are pure predicates; the router composes them per route and follows redirects

package guard

import (
	"fmt"

	"github.com/markalston/inventory-requests/internal/session"
)

// Route names a navigable view
type Route string

const (
	Login             Route = "login"
	EmployeeDashboard Route = "employee-dashboard"
	AdminDashboard    Route = "admin-dashboard"
)

// maxRedirects bounds redirect chains so a misconfigured table cannot loop forever
const maxRedirects = 8

// Decision is the outcome of evaluating a guard
type Decision struct {
	Allowed  bool
	Redirect Route
}

// Allow permits navigation
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny refuses navigation and names where to go instead
func Deny(to Route) Decision {
	return Decision{Redirect: to}
}

// Guard decides whether navigation may proceed given a session snapshot
type Guard func(session.Snapshot) Decision

// SnapshotSource is satisfied by *session.Store
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// Authenticated permits navigation iff a full session is present
func Authenticated(snap session.Snapshot) Decision {
	if snap.Authenticated() {
		return Allow()
	}
	return Deny(Login)
}

// Admin permits navigation iff the session carries the admin role
func Admin(snap session.Snapshot) Decision {
	if snap.Admin() {
		return Allow()
	}
	return Deny(EmployeeDashboard)
}

// Chain runs guards in order; the first denial wins
func Chain(guards ...Guard) Guard {
	return func(snap session.Snapshot) Decision {
		for _, g := range guards {
			if d := g(snap); !d.Allowed {
				return d
			}
		}
		return Allow()
	}
}

// Router maps routes to their guard chains
type Router struct {
	source SnapshotSource
	routes map[Route]Guard
}

// NewRouter builds the standard route table over source
func NewRouter(source SnapshotSource) *Router {
	return &Router{
		source: source,
		routes: map[Route]Guard{
			Login:             Chain(),
			EmployeeDashboard: Chain(Authenticated),
			AdminDashboard:    Chain(Authenticated, Admin),
		},
	}
}

// Check evaluates a single route against the current snapshot without following redirects
func (r *Router) Check(route Route) Decision {
	return r.check(route, r.source.Snapshot())
}

// Resolve returns the route navigation actually lands on when asked for route.
// All hops are evaluated against one snapshot.
func (r *Router) Resolve(route Route) (Route, error) {
	snap := r.source.Snapshot()
	current := route
	for range maxRedirects {
		d := r.check(current, snap)
		if d.Allowed {
			return current, nil
		}
		current = d.Redirect
	}
	return "", fmt.Errorf("too many redirects resolving %q", route)
}

// Landing is the route a freshly authenticated user is sent to
func (r *Router) Landing() Route {
	return Landing(r.source.Snapshot())
}

func (r *Router) check(route Route, snap session.Snapshot) Decision {
	g, ok := r.routes[route]
	if !ok {
		return Deny(Login)
	}
	return g(snap)
}

// Landing picks the dashboard for snap's role, or Login when anonymous
func Landing(snap session.Snapshot) Route {
	switch {
	case snap.Admin():
		return AdminDashboard
	case snap.Authenticated():
		return EmployeeDashboard
	default:
		return Login
	}
}
