// ABOUTME: Declarative route table for the development API
// ABOUTME: Defines every endpoint with its method, handler and access level

package devapi

import "net/http"

// access is the minimum caller a route admits
type access int

const (
	public access = iota
	authenticated
	adminOnly
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	access  access
}

// Routes returns all API routes for registration.
func (s *Server) Routes() []Route {
	return []Route{
		// Auth
		{Method: http.MethodPost, Path: "/api/auth/login", Handler: s.login, access: public},
		{Method: http.MethodGet, Path: "/api/auth/me", Handler: s.me, access: authenticated},

		// Items
		{Method: http.MethodGet, Path: "/api/items", Handler: s.listItems, access: authenticated},
		{Method: http.MethodGet, Path: "/api/items/{id}", Handler: s.getItem, access: authenticated},
		{Method: http.MethodPost, Path: "/api/items", Handler: s.createItem, access: adminOnly},
		{Method: http.MethodPut, Path: "/api/items/{id}", Handler: s.updateItem, access: adminOnly},
		{Method: http.MethodDelete, Path: "/api/items/{id}", Handler: s.deleteItem, access: adminOnly},

		// Requests
		{Method: http.MethodGet, Path: "/api/requests", Handler: s.listRequests, access: adminOnly},
		{Method: http.MethodGet, Path: "/api/requests/user/{userId}", Handler: s.listUserRequests, access: authenticated},
		{Method: http.MethodPost, Path: "/api/requests", Handler: s.createRequest, access: authenticated},
		{Method: http.MethodPut, Path: "/api/requests/{id}/approve", Handler: s.approveRequest, access: adminOnly},
		{Method: http.MethodPut, Path: "/api/requests/{id}/reject", Handler: s.rejectRequest, access: adminOnly},
		{Method: http.MethodPut, Path: "/api/requests/{id}/cancel", Handler: s.cancelRequest, access: authenticated},
	}
}
