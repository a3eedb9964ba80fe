package state

import (
	"sync"

	"github.com/five82/sixcities/internal/rental"
)

// AuthStatus is the authentication state of the session.
type AuthStatus int

const (
	// AuthUnknown is the initial status while the session check is pending.
	AuthUnknown AuthStatus = iota
	// AuthAuthorized means a user is signed in.
	AuthAuthorized
	// AuthNoAuth means nobody is signed in.
	AuthNoAuth
)

func (s AuthStatus) String() string {
	switch s {
	case AuthAuthorized:
		return "AUTH"
	case AuthNoAuth:
		return "NO_AUTH"
	default:
		return "UNKNOWN"
	}
}

// AuthSnapshot is a copy of the auth store.
type AuthSnapshot struct {
	Status  AuthStatus
	User    rental.UserAuth
	HasUser bool
	// Pending is true while a check, login or logout is in flight.
	Pending bool
	// Error is the reason of the last failed login or logout.
	Error string
}

// Authorized reports whether a user is signed in.
func (s AuthSnapshot) Authorized() bool { return s.Status == AuthAuthorized }

// AuthStore tracks who is signed in. Check, login and logout share one
// request slot: starting any of them supersedes the others.
type AuthStore struct {
	mu  sync.RWMutex
	seq sequencer

	status  AuthStatus
	user    rental.UserAuth
	hasUser bool
	pending bool
	err     string
}

// NewAuthStore returns a store in AuthUnknown.
func NewAuthStore() *AuthStore {
	return &AuthStore{}
}

// Snapshot returns a copy of the store.
func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return AuthSnapshot{
		Status:  s.status,
		User:    s.user,
		HasUser: s.hasUser,
		Pending: s.pending,
		Error:   s.err,
	}
}

// Begin marks a session request as in flight.
func (s *AuthStore) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = true
	s.err = ""
	return s.seq.next(slotSession, "")
}

// CompleteCheck stores the identity confirmed by the server.
func (s *AuthStore) CompleteCheck(t Ticket, user rental.UserAuth) bool {
	return s.authorize(t, user)
}

// FailCheck drops to AuthNoAuth. The reason is not shown: an anonymous
// visitor is not an error.
func (s *AuthStore) FailCheck(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.signOut()
	return true
}

// CompleteLogin stores the signed-in identity.
func (s *AuthStore) CompleteLogin(t Ticket, user rental.UserAuth) bool {
	return s.authorize(t, user)
}

// FailLogin records reason. An unresolved status becomes AuthNoAuth; a known
// status is kept.
func (s *AuthStore) FailLogin(t Ticket, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.pending = false
	s.err = reason
	if s.status == AuthUnknown {
		s.status = AuthNoAuth
	}
	return true
}

// CompleteLogout forgets the identity.
func (s *AuthStore) CompleteLogout(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.signOut()
	return true
}

// FailLogout keeps the user signed in and records reason.
func (s *AuthStore) FailLogout(t Ticket, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.pending = false
	s.err = reason
	return true
}

// Expire signs the user out after the server rejected the token. Any
// in-flight session request is discarded.
func (s *AuthStore) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.invalidate(slotSession)
	s.signOut()
}

func (s *AuthStore) authorize(t Ticket, user rental.UserAuth) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.status = AuthAuthorized
	s.user = user
	s.hasUser = true
	s.pending = false
	s.err = ""
	return true
}

func (s *AuthStore) signOut() {
	s.status = AuthNoAuth
	s.user = rental.UserAuth{}
	s.hasUser = false
	s.pending = false
}
