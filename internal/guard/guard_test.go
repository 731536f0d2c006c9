// ABOUTME: Tests for route guards and the route table
// ABOUTME: Exercises every route for anonymous, employee and admin sessions

package guard

import (
	"testing"

	"github.com/markalston/inventory-requests/internal/session"
)

var (
	anonymous = session.Snapshot{}
	employee  = session.Snapshot{
		Identity: &session.Identity{ID: 2, Username: "john", Role: session.RoleEmployee},
		Token:    "xyz",
	}
	admin = session.Snapshot{
		Identity: &session.Identity{ID: 1, Username: "admin", Role: session.RoleAdmin},
		Token:    "abc",
	}
)

type fixedSource session.Snapshot

func (f fixedSource) Snapshot() session.Snapshot { return session.Snapshot(f) }

func TestAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want Decision
	}{
		{"anonymous", anonymous, Deny(Login)},
		{"token without identity", session.Snapshot{Token: "abc"}, Deny(Login)},
		{"employee", employee, Allow()},
		{"admin", admin, Allow()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authenticated(tt.snap); got != tt.want {
				t.Errorf("Authenticated() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAdmin(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want Decision
	}{
		{"anonymous", anonymous, Deny(EmployeeDashboard)},
		{"employee", employee, Deny(EmployeeDashboard)},
		{"admin", admin, Allow()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Admin(tt.snap); got != tt.want {
				t.Errorf("Admin() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChain_FirstDenialWins(t *testing.T) {
	g := Chain(Authenticated, Admin)

	if got := g(anonymous); got != Deny(Login) {
		t.Errorf("anonymous: got %+v, want redirect to login", got)
	}
	if got := g(employee); got != Deny(EmployeeDashboard) {
		t.Errorf("employee: got %+v, want redirect to employee dashboard", got)
	}
	if got := g(admin); !got.Allowed {
		t.Errorf("admin: got %+v, want allowed", got)
	}
	if got := Chain()(anonymous); !got.Allowed {
		t.Error("empty chain should allow")
	}
}

func TestRouter_Resolve(t *testing.T) {
	tests := []struct {
		name  string
		snap  session.Snapshot
		route Route
		want  Route
	}{
		{"anonymous to login", anonymous, Login, Login},
		{"anonymous to employee", anonymous, EmployeeDashboard, Login},
		{"anonymous to admin", anonymous, AdminDashboard, Login},
		{"employee to employee", employee, EmployeeDashboard, EmployeeDashboard},
		{"employee to admin", employee, AdminDashboard, EmployeeDashboard},
		{"admin to admin", admin, AdminDashboard, AdminDashboard},
		{"admin to employee", admin, EmployeeDashboard, EmployeeDashboard},
		{"unknown route", admin, Route("reports"), Login},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(fixedSource(tt.snap))
			got, err := r.Resolve(tt.route)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.route, got, tt.want)
			}
		})
	}
}

func TestRouter_RedirectLoop(t *testing.T) {
	r := &Router{
		source: fixedSource(anonymous),
		routes: map[Route]Guard{
			Login:             func(session.Snapshot) Decision { return Deny(EmployeeDashboard) },
			EmployeeDashboard: func(session.Snapshot) Decision { return Deny(Login) },
		},
	}

	if _, err := r.Resolve(Login); err == nil {
		t.Error("expected error for redirect loop")
	}
}

func TestRouter_FollowsStoreChanges(t *testing.T) {
	store := session.NewStore(nil)
	r := NewRouter(store)

	if got, _ := r.Resolve(AdminDashboard); got != Login {
		t.Errorf("expected login before authentication, got %s", got)
	}

	store.SetSession(admin.Identity, admin.Token)
	if got, _ := r.Resolve(AdminDashboard); got != AdminDashboard {
		t.Errorf("expected admin dashboard, got %s", got)
	}
	if r.Landing() != AdminDashboard {
		t.Errorf("expected admin landing, got %s", r.Landing())
	}

	store.ClearSession()
	if got, _ := r.Resolve(AdminDashboard); got != Login {
		t.Errorf("expected login after logout, got %s", got)
	}
	if d := r.Check(EmployeeDashboard); d.Allowed {
		t.Error("expected employee dashboard denied after logout")
	}
}

func TestLanding(t *testing.T) {
	if got := Landing(anonymous); got != Login {
		t.Errorf("anonymous landing = %s", got)
	}
	if got := Landing(employee); got != EmployeeDashboard {
		t.Errorf("employee landing = %s", got)
	}
	if got := Landing(admin); got != AdminDashboard {
		t.Errorf("admin landing = %s", got)
	}
}
