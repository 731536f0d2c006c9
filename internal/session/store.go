// ABOUTME: Session store holding the authenticated identity and bearer token
// ABOUTME: Persists the pair through Storage and fans snapshots out to subscribers

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStaleSession is returned when a commit lost to a newer write
var ErrStaleSession = errors.New("session changed since the operation started")

// Snapshot is an immutable view of the session at one point in time
type Snapshot struct {
	Identity *Identity
	Token    string
}

// Authenticated reports whether both identity and token are present
func (s Snapshot) Authenticated() bool {
	return s.Identity != nil && s.Token != ""
}

// Admin reports whether the snapshot is authenticated with the admin role
func (s Snapshot) Admin() bool {
	return s.Authenticated() && s.Identity.Role == RoleAdmin
}

// Ticket records where an asynchronous operation sits in invocation order.
// See Store.Begin and Store.Mark.
type Ticket struct {
	seq  uint64
	base uint64
}

// Store owns the current session. Safe for concurrent use.
type Store struct {
	storage Storage

	mu         sync.Mutex
	current    Snapshot
	seq        uint64 // last invocation handed out
	written    uint64 // invocation whose write is current
	subs       map[*Subscription]struct{}
	persistErr error
}

// NewStore creates an empty store backed by storage.
// A nil storage keeps the session in memory only.
func NewStore(storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{
		storage: storage,
		subs:    make(map[*Subscription]struct{}),
	}
}

// Restore loads a previously persisted identity+token pair without contacting the backend.
// Returns true if a complete pair was found. A half-written pair is removed.
func (s *Store) Restore() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, hasToken, err := s.storage.Get(TokenKey)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	raw, hasIdentity, err := s.storage.Get(IdentityKey)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}

	if !hasToken && !hasIdentity {
		return false, nil
	}

	var identity Identity
	if hasToken && hasIdentity && token != "" {
		if err := json.Unmarshal([]byte(raw), &identity); err == nil && identity.Role.Valid() {
			s.seq++
			s.written = s.seq
			s.apply(Snapshot{Identity: &identity, Token: token})
			slog.Debug("Session restored", "username", identity.Username, "role", identity.Role)
			return true, nil
		}
	}

	slog.Warn("Discarding incomplete persisted session", "has_token", hasToken, "has_identity", hasIdentity)
	s.removePersisted()
	return false, nil
}

// SetSession atomically replaces the session, persists it and notifies subscribers.
// A nil identity, an unknown role or an empty token clears the session instead.
func (s *Store) SetSession(identity *Identity, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.set(s.seq, identity, token)
}

// ClearSession removes the session and its persisted entries
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.clear(s.seq)
}

// Begin starts an asynchronous session write such as a login round trip.
// The ticket takes its place in invocation order now; an operation that
// fails simply never commits and leaves earlier tickets valid.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return Ticket{seq: s.seq, base: s.written}
}

// Mark returns a ticket for the current session without taking a place in invocation order.
// Use it for background checks that should lose to any write.
func (s *Store) Mark() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Ticket{seq: s.seq, base: s.written}
}

// CommitSession applies identity+token unless a write invoked after t already landed.
// Returns ErrStaleSession otherwise, leaving the store untouched.
func (s *Store) CommitSession(t Ticket, identity *Identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.seq <= s.written {
		return ErrStaleSession
	}
	s.set(t.seq, identity, token)
	return nil
}

// CommitClear clears the session only if nothing wrote since t was issued.
// The clear takes t's place in invocation order, so logins begun after t still commit.
func (s *Store) CommitClear(t Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.base != s.written {
		return ErrStaleSession
	}
	s.clear(t.seq)
	return nil
}

// Snapshot returns the latest session snapshot
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.copy()
}

// CurrentIdentity returns a copy of the current identity, or nil
func (s *Store) CurrentIdentity() *Identity {
	return s.Snapshot().Identity
}

// CurrentToken returns the current bearer token, or "" when anonymous
func (s *Store) CurrentToken() string {
	return s.Snapshot().Token
}

// IsAuthenticated reports whether both identity and token are present
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().Authenticated()
}

// IsAdmin reports whether the session is authenticated with the admin role
func (s *Store) IsAdmin() bool {
	return s.Snapshot().Admin()
}

// LastPersistError returns the error from the most recent persistence attempt, if any.
// Persistence failures never invalidate the in-memory session.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// Subscribe registers a new subscriber. The current snapshot is delivered first.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{
		ch:    make(chan Snapshot, 1),
		store: s,
	}
	sub.ch <- s.current.copy()
	s.subs[sub] = struct{}{}
	return sub
}

// set records seq as the current write. Must hold mu.
func (s *Store) set(seq uint64, identity *Identity, token string) {
	if identity == nil || token == "" {
		s.clear(seq)
		return
	}
	if !identity.Role.Valid() {
		slog.Warn("Refusing session with unknown role", "username", identity.Username, "role", identity.Role)
		s.clear(seq)
		return
	}

	s.written = seq
	next := Snapshot{Identity: identity.clone(), Token: token}
	s.persist(next)
	s.apply(next)
}

// clear records seq as the current write. Must hold mu.
func (s *Store) clear(seq uint64) {
	s.written = seq
	s.removePersisted()
	s.apply(Snapshot{})
}

// apply swaps the current snapshot and publishes it. Must hold mu.
func (s *Store) apply(next Snapshot) {
	s.current = next
	for sub := range s.subs {
		sub.deliver(next.copy())
	}
}

// persist writes both entries. Must hold mu.
func (s *Store) persist(snap Snapshot) {
	data, err := json.Marshal(snap.Identity)
	if err == nil {
		err = s.storage.Set(IdentityKey, string(data))
	}
	if err == nil {
		err = s.storage.Set(TokenKey, snap.Token)
	}
	s.persistErr = err
	if err != nil {
		slog.Warn("Session not persisted; it will not survive a restart", "error", err)
		// Never leave a half-written pair behind
		s.storage.Remove(TokenKey)
		s.storage.Remove(IdentityKey)
	}
}

// removePersisted deletes both entries. Must hold mu.
func (s *Store) removePersisted() {
	err := errors.Join(s.storage.Remove(TokenKey), s.storage.Remove(IdentityKey))
	s.persistErr = err
	if err != nil {
		slog.Warn("Failed to remove persisted session", "error", err)
	}
}

func (s Snapshot) copy() Snapshot {
	return Snapshot{Identity: s.Identity.clone(), Token: s.Token}
}

// Subscription receives session snapshots in the order they were written.
// A subscriber that falls behind skips to the latest snapshot.
type Subscription struct {
	ch     chan Snapshot
	store  *Store
	closed bool
}

// C returns the snapshot channel. It is closed by Close.
func (sub *Subscription) C() <-chan Snapshot {
	return sub.ch
}

// Close unregisters the subscription and closes its channel
func (sub *Subscription) Close() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	delete(s.subs, sub)
	close(sub.ch)
}

// deliver replaces any undelivered snapshot with next. Must hold store mu.
func (sub *Subscription) deliver(next Snapshot) {
	select {
	case sub.ch <- next:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- next
}
