// ABOUTME: HTTP handlers implementing the inventory-request backend contract
// ABOUTME: Login and identity, item CRUD, and the request approval workflow

package devapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/markalston/inventory-requests/internal/session"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginOutput struct {
	Success bool              `json:"success"`
	Token   string            `json:"token,omitempty"`
	User    *session.Identity `json:"user,omitempty"`
	Message string            `json:"message,omitempty"`
}

type itemInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"min=0"`
}

type requestInput struct {
	UserID   int64  `json:"userId" validate:"gt=0"`
	ItemID   int64  `json:"itemId" validate:"gt=0"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Reason   string `json:"reason" validate:"required"`
}

type decisionInput struct {
	Comments *string `json:"comments"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, loginOutput{Success: false, Message: "Invalid credentials"})
		return
	}

	u, ok := s.store.authenticate(in.Username, in.Password)
	if !ok {
		slog.Info("Login failed", "username", in.Username)
		writeJSON(w, http.StatusBadRequest, loginOutput{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := s.tokens.issue(&u.Identity)
	if err != nil {
		slog.Error("Failed to sign token", "username", in.Username, "error", err)
		writeJSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	identity := u.Identity
	slog.Info("Login succeeded", "username", identity.Username, "role", identity.Role)
	writeJSON(w, http.StatusOK, loginOutput{Success: true, Token: token, User: &identity})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listItems())
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	it, err := s.store.getItem(id)
	if err != nil {
		writeJSONError(w, "Item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var in itemInput
	if !decodeValid(w, r, &in) {
		return
	}
	created := s.store.createItem(item{Name: in.Name, Description: in.Description, Quantity: in.Quantity})
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in itemInput
	if !decodeValid(w, r, &in) {
		return
	}
	updated, err := s.store.updateItem(id, item{Name: in.Name, Description: in.Description, Quantity: in.Quantity})
	if err != nil {
		writeJSONError(w, "Item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.deleteItem(id); err != nil {
		writeJSONError(w, "Item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listRequests(nil))
}

func (s *Server) listUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	caller := currentUser(r)
	if !caller.IsAdmin() && caller.ID != userID {
		writeJSONError(w, "Insufficient permissions", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, s.store.listRequests(func(sr *storedRequest) bool {
		return sr.userID == userID
	}))
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var in requestInput
	if !decodeValid(w, r, &in) {
		return
	}
	caller := currentUser(r)
	if !caller.IsAdmin() && caller.ID != in.UserID {
		writeJSONError(w, "Cannot create requests for another user", http.StatusForbidden)
		return
	}
	created, err := s.store.createRequest(in.UserID, in.ItemID, in.Quantity, strings.TrimSpace(in.Reason))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, statusApproved)
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, statusRejected)
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request, next status) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in decisionInput
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	updated, err := s.store.transition(id, next, in.Comments)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	slog.Info("Request decided", "id", id, "status", next, "admin", currentUser(r).Username)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) cancelRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := s.store.getRequest(id)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	caller := currentUser(r)
	if !caller.IsAdmin() && caller.ID != existing.userID {
		writeJSONError(w, "Cannot cancel another user's request", http.StatusForbidden)
		return
	}
	updated, err := s.store.transition(id, statusCancelled, nil)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeJSONError(w, "Request not found", http.StatusNotFound)
	case errors.Is(err, errNotPending):
		writeJSONError(w, "Only pending requests can be changed", http.StatusBadRequest)
	default:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeValid decodes the JSON body into v and runs its validate tags
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSONError(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
