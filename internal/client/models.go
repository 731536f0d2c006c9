// ABOUTME: Wire types for the inventory-request API
// ABOUTME: Items, requests, login payloads and the API error envelope

package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/markalston/inventory-requests/internal/session"
)

// LoginRequest carries credentials for POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body of POST /api/auth/login
type LoginResponse struct {
	Success bool              `json:"success"`
	Token   string            `json:"token,omitempty"`
	User    *session.Identity `json:"user,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Item is a stock item
type Item struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"min=0"`
}

// Status is the workflow state of a request
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Request is an employee's request for an item
type Request struct {
	ID            int64            `json:"id"`
	User          session.Identity `json:"user"`
	Item          Item             `json:"item"`
	Quantity      int              `json:"quantity"`
	Reason        string           `json:"reason"`
	Status        Status           `json:"status"`
	RequestDate   Timestamp        `json:"requestDate"`
	ResponseDate  *Timestamp       `json:"responseDate,omitempty"`
	AdminComments string           `json:"adminComments,omitempty"`
}

// Pending reports whether the request can still be approved, rejected or cancelled
func (r *Request) Pending() bool {
	return r.Status == StatusPending
}

// NewRequest is the body of POST /api/requests
type NewRequest struct {
	UserID   int64  `json:"userId" validate:"gt=0"`
	ItemID   int64  `json:"itemId" validate:"gt=0"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Reason   string `json:"reason" validate:"required"`
}

// Decision is the body of the approve and reject endpoints
type Decision struct {
	Comments string `json:"comments"`
}

// rejection requires a reason where approval comments are optional
type rejection struct {
	Comments string `json:"comments" validate:"required"`
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Timestamp accepts RFC 3339 and zone-less ISO-8601 local date-times
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}
