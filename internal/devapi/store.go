// ABOUTME: In-memory users, items and requests backing the development API
// ABOUTME: Seeded with demo accounts and stock; safe for concurrent handlers

package devapi

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/markalston/inventory-requests/internal/session"
	"golang.org/x/crypto/bcrypt"
)

var (
	errNotFound   = errors.New("not found")
	errNotPending = errors.New("request is no longer pending")
)

type user struct {
	session.Identity
	passwordHash []byte
}

type item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type status string

const (
	statusPending   status = "PENDING"
	statusApproved  status = "APPROVED"
	statusRejected  status = "REJECTED"
	statusCancelled status = "CANCELLED"
)

type request struct {
	ID            int64            `json:"id"`
	User          session.Identity `json:"user"`
	Item          item             `json:"item"`
	Quantity      int              `json:"quantity"`
	Reason        string           `json:"reason"`
	Status        status           `json:"status"`
	RequestDate   localTime        `json:"requestDate"`
	ResponseDate  *localTime       `json:"responseDate"`
	AdminComments string           `json:"adminComments"`
}

// localTime serializes without a zone, the way the production backend does
type localTime time.Time

const localLayout = "2006-01-02T15:04:05"

func (t localTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(localLayout) + `"`), nil
}

func (t *localTime) UnmarshalJSON(data []byte) error {
	parsed, err := time.Parse(`"`+localLayout+`"`, string(data))
	if err != nil {
		return err
	}
	*t = localTime(parsed)
	return nil
}

// store is the in-memory data set. Requests hold user and item IDs and are
// joined on read so item edits show up in existing requests.
type store struct {
	mu       sync.RWMutex
	users    map[int64]*user
	items    map[int64]*item
	requests map[int64]*storedRequest
	nextItem int64
	nextReq  int64
	now      func() time.Time
}

type storedRequest struct {
	id            int64
	userID        int64
	itemID        int64
	quantity      int
	reason        string
	status        status
	requestDate   time.Time
	responseDate  *time.Time
	adminComments string
}

type seedUser struct {
	username, password, name string
	role                     session.Role
}

var seedUsers = []seedUser{
	{"admin", "admin123", "Administrator", session.RoleAdmin},
	{"john", "john123", "John Doe", session.RoleEmployee},
	{"jane", "jane123", "Jane Smith", session.RoleEmployee},
}

var seedItems = []item{
	{Name: "Mouse", Description: "Wireless optical mouse", Quantity: 25},
	{Name: "Keyboard", Description: "Mechanical keyboard", Quantity: 15},
	{Name: "PC", Description: "Desktop computer", Quantity: 10},
	{Name: "Monitor", Description: "24-inch LED monitor", Quantity: 20},
	{Name: "Headphones", Description: "Noise-cancelling headphones", Quantity: 12},
}

func newStore(bcryptCost int) (*store, error) {
	s := &store{
		users:    make(map[int64]*user),
		items:    make(map[int64]*item),
		requests: make(map[int64]*storedRequest),
		now:      time.Now,
	}

	for i, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hashing seed password for %s: %w", su.username, err)
		}
		id := int64(i + 1)
		s.users[id] = &user{
			Identity:     session.Identity{ID: id, Username: su.username, DisplayName: su.name, Role: su.role},
			passwordHash: hash,
		}
	}

	for _, it := range seedItems {
		s.createItem(it)
	}

	return s, nil
}

// authenticate returns the user iff the password matches
func (s *store) authenticate(username, password string) (*user, bool) {
	u, ok := s.userByName(username)
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return nil, false
	}
	return u, true
}

func (s *store) userByName(username string) (*user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return nil, false
}

func (s *store) listItems() []item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *it)
	}
	slices.SortFunc(out, func(a, b item) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *store) getItem(id int64) (item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return item{}, errNotFound
	}
	return *it, nil
}

func (s *store) createItem(in item) item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextItem++
	in.ID = s.nextItem
	s.items[in.ID] = &in
	return in
}

func (s *store) updateItem(id int64, in item) (item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return item{}, errNotFound
	}
	it.Name, it.Description, it.Quantity = in.Name, in.Description, in.Quantity
	return *it, nil
}

func (s *store) deleteItem(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return errNotFound
	}
	delete(s.items, id)
	return nil
}

// listRequests returns requests matching keep, oldest first
func (s *store) listRequests(keep func(*storedRequest) bool) []request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]request, 0, len(s.requests))
	for _, r := range s.requests {
		if keep == nil || keep(r) {
			out = append(out, s.view(r))
		}
	}
	slices.SortFunc(out, func(a, b request) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *store) getRequest(id int64) (*storedRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, errNotFound
	}
	c := *r
	return &c, nil
}

func (s *store) createRequest(userID, itemID int64, quantity int, reason string) (request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return request{}, fmt.Errorf("unknown user %d", userID)
	}
	if _, ok := s.items[itemID]; !ok {
		return request{}, fmt.Errorf("unknown item %d", itemID)
	}
	s.nextReq++
	r := &storedRequest{
		id:          s.nextReq,
		userID:      userID,
		itemID:      itemID,
		quantity:    quantity,
		reason:      reason,
		status:      statusPending,
		requestDate: s.now(),
	}
	s.requests[r.id] = r
	return s.view(r), nil
}

// transition moves a pending request to next
func (s *store) transition(id int64, next status, comments *string) (request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return request{}, errNotFound
	}
	if r.status != statusPending {
		return request{}, errNotPending
	}
	now := s.now()
	r.status = next
	r.responseDate = &now
	if comments != nil {
		r.adminComments = *comments
	}
	return s.view(r), nil
}

// view joins a stored request with its user and item. Must hold mu.
func (s *store) view(r *storedRequest) request {
	out := request{
		ID:            r.id,
		Quantity:      r.quantity,
		Reason:        r.reason,
		Status:        r.status,
		RequestDate:   localTime(r.requestDate),
		AdminComments: r.adminComments,
	}
	if u, ok := s.users[r.userID]; ok {
		out.User = u.Identity
	}
	if it, ok := s.items[r.itemID]; ok {
		out.Item = *it
	} else {
		out.Item = item{ID: r.itemID, Name: "(deleted)"}
	}
	if r.responseDate != nil {
		rd := localTime(*r.responseDate)
		out.ResponseDate = &rd
	}
	return out
}
