package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/nexuscloud/nexus/internal/registry"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is the resolved caller of a request.
type Identity struct {
	Username string        `json:"username"`
	Role     registry.Role `json:"role"`
}

// Sessions maps opaque tokens to identities. Tokens live for the process
// lifetime only and never expire; logout is a client-side cookie discard.
// Several tokens may map to the same identity.
type Sessions struct {
	mu      sync.RWMutex
	byToken map[string]Identity
}

func NewSessions() *Sessions {
	return &Sessions{byToken: make(map[string]Identity)}
}

// Create issues a fresh token for id.
func (s *Sessions) Create(id Identity) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.byToken[token] = id
	s.mu.Unlock()
	return token
}

// Get resolves a token.
func (s *Sessions) Get(token string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[token]
	return id, ok
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

// Service authenticates credentials against the registry and owns the
// session table.
type Service struct {
	reg      *registry.Registry
	Sessions *Sessions
}

func NewService(reg *registry.Registry) *Service {
	return &Service{reg: reg, Sessions: NewSessions()}
}

// Authenticate checks an exact username/password match and on success
// creates a session, returning the identity and its token.
func (s *Service) Authenticate(username, password string) (Identity, string, error) {
	acct, ok := s.reg.Lookup(username)
	if !ok || acct.Password != password {
		return Identity{}, "", ErrInvalidCredentials
	}
	id := Identity{Username: username, Role: acct.Role}
	return id, s.Sessions.Create(id), nil
}
