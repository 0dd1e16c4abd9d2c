// Package session holds the authenticated identity for one browser
// context and keeps it consistent with the persisted cookie token.
package session

import (
	"context"
	"log"
	"sync"

	"chat-bff/internal/models"
)

// Verifier is the upstream whoami dependency.
type Verifier interface {
	Verify(ctx context.Context, token string) (models.User, error)
}

// Session is an explicit state object, not an ambient global. The
// invariant is that an authenticated session always has a non-empty token
// and a user; every transition out of that state goes through Logout.
type Session struct {
	verifier Verifier

	mu            sync.RWMutex
	token         string
	user          *models.User
	claims        *Claims
	authenticated bool
	watchers      []func(token string)
}

func New(verifier Verifier) *Session {
	return &Session{verifier: verifier}
}

// Login installs the identity and token as one logical transition: no
// reader observes the token without the user or vice versa. The caller is
// responsible for writing the cookie on the same request.
func (s *Session) Login(user models.User, token string) {
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.authenticated = true
	if claims, err := DecodeClaims(token); err == nil {
		s.claims = claims
	} else {
		s.claims = nil
	}
	watchers := append([]func(string){}, s.watchers...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(token)
	}
}

// Logout clears the in-memory state and notifies watchers with an empty
// token so the realtime channel is torn down. Idempotent.
func (s *Session) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.authenticated || s.token != ""
	s.token = ""
	s.user = nil
	s.claims = nil
	s.authenticated = false
	watchers := append([]func(string){}, s.watchers...)
	s.mu.Unlock()

	if !wasAuthenticated {
		return
	}
	for _, fn := range watchers {
		fn("")
	}
}

// Verify resolves the session against the cookie token.
//
// No cookie token: not authenticated, no network call (a leftover
// in-memory session is cleared so memory and cookie never diverge past one
// request cycle). Already authenticated with the same token and not
// forced: trust the cache, no network call. Otherwise one round trip to
// the upstream whoami endpoint; any failure collapses to Logout and false.
// Verify never returns an error to its caller.
func (s *Session) Verify(ctx context.Context, cookieToken string, force bool) bool {
	if cookieToken == "" {
		s.mu.RLock()
		stale := s.authenticated
		s.mu.RUnlock()
		if stale {
			s.Logout()
		}
		return false
	}

	s.mu.RLock()
	cached := s.authenticated && !force && s.token == cookieToken
	s.mu.RUnlock()
	if cached {
		return true
	}

	user, err := s.verifier.Verify(ctx, cookieToken)
	if err != nil {
		log.Printf("session verify failed: %v", err)
		s.Logout()
		return false
	}

	s.Login(user, cookieToken)
	return true
}

// Watch registers a token observer and immediately delivers the current
// token so a watcher attached after login still connects.
func (s *Session) Watch(fn func(token string)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	token := s.token
	s.mu.Unlock()
	fn(token)
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the profile, nil when not authenticated.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// UserID falls back to the locally decoded token claims when the profile
// has not been fetched yet.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user != nil {
		return s.user.ID
	}
	if s.claims != nil {
		return s.claims.UserID
	}
	return ""
}
