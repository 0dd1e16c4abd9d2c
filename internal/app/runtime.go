// Package app owns the per-session state objects. Session, conversation
// store and realtime channel are explicit objects bundled into a Runtime
// and handed to handlers by reference, never ambient globals.
package app

import (
	"sync"
	"sync/atomic"
	"time"

	"chat-bff/internal/realtime"
	"chat-bff/internal/session"
	"chat-bff/internal/store"
	"chat-bff/internal/telemetry"
	"chat-bff/internal/upstream"
)

// Runtime is one authenticated browser context: its session, its
// reconciled conversation view and the supervisor owning its single
// gateway channel.
type Runtime struct {
	session *session.Session
	store   *store.ConversationStore
	channel *realtime.Supervisor
}

func (r *Runtime) Session() *session.Session {
	return r.session
}

func (r *Runtime) Store() *store.ConversationStore {
	return r.store
}

func (r *Runtime) Channel() *realtime.Supervisor {
	return r.channel
}

// Registry creates and tracks runtimes keyed by session token. Dropping a
// runtime on logout is also the retention policy for its conversation
// cache: the whole per-session view goes with it.
type Registry struct {
	upstream   upstream.Client
	gatewayURL string
	cookieTTL  time.Duration
	audit      *telemetry.AuditEmitter

	mu       sync.Mutex
	runtimes map[string]*Runtime
}

func NewRegistry(client upstream.Client, gatewayURL string, cookieTTL time.Duration, audit *telemetry.AuditEmitter) *Registry {
	if cookieTTL <= 0 {
		cookieTTL = session.DefaultCookieTTL
	}
	return &Registry{
		upstream:   client,
		gatewayURL: gatewayURL,
		cookieTTL:  cookieTTL,
		audit:      audit,
		runtimes:   make(map[string]*Runtime),
	}
}

// CookieTTL is the expiry handlers use when writing the session cookie.
func (g *Registry) CookieTTL() time.Duration {
	return g.cookieTTL
}

// Runtime returns the runtime for a token, creating it on first sight.
// The new session starts unverified; the caller decides between Login
// (fresh credentials) and Verify (cookie-carried token).
func (g *Registry) Runtime(token string) *Runtime {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rt, ok := g.runtimes[token]; ok {
		return rt
	}

	sess := session.New(g.upstream)
	st := store.New(sess.UserID)
	supervisor := realtime.NewSupervisor(g.gatewayURL, st, g.audit)
	st.SetEmitter(supervisor)
	sess.Watch(supervisor.OnToken)

	// A session that logs out removes its runtime; the token key is fixed
	// at creation, so an emptied token after a login means this runtime is
	// done. The initial empty delivery from Watch must not remove anything.
	var loggedIn atomic.Bool
	sess.Watch(func(current string) {
		if current != "" {
			loggedIn.Store(true)
			return
		}
		if loggedIn.Load() {
			go g.Remove(token)
		}
	})

	rt := &Runtime{session: sess, store: st, channel: supervisor}
	g.runtimes[token] = rt
	return rt
}

// DiscardUnauthenticated drops the runtime for a token whose session never
// reached the authenticated state. The logout watcher only covers sessions
// that logged in, so every failed verification routes through here; without
// it, unknown cookie values would accumulate runtimes.
func (g *Registry) DiscardUnauthenticated(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if rt, ok := g.runtimes[token]; ok && !rt.session.IsAuthenticated() {
		delete(g.runtimes, token)
	}
}

// Peek returns an existing runtime without creating one.
func (g *Registry) Peek(token string) (*Runtime, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rt, ok := g.runtimes[token]
	return rt, ok
}

func (g *Registry) Remove(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.runtimes, token)
}
