// Package guard gates navigation on session state. The decision core is
// pure; it is consulted by the navigation endpoint and by the API
// middleware. Render-time decisions see only the cookie, interactive
// decisions can trigger an authoritative verification call.
package guard

import (
	"context"
	"time"

	"chat-bff/internal/session"
)

// Route describes a navigation target or origin.
type Route struct {
	Name        string
	RequireAuth bool
}

// Outcome is terminal: either proceed or redirect. No retries here.
type Outcome struct {
	Redirect string
}

func (o Outcome) Proceed() bool {
	return o.Redirect == ""
}

const (
	LoginPath = "/auth/login"
	HomePath  = "/"
)

// Routes known to the navigation layer. Unknown names resolve to public.
var routes = map[string]Route{
	"login":           {Name: "login"},
	"register":        {Name: "register"},
	"forgot-password": {Name: "forgot-password"},
	"home":            {Name: "home", RequireAuth: true},
	"chat":            {Name: "chat", RequireAuth: true},
	"users":           {Name: "users", RequireAuth: true},
}

// Pages with no business being shown to an authenticated user.
var denyWhenAuthenticated = map[string]bool{
	"login":           true,
	"register":        true,
	"forgot-password": true,
}

// Lookup resolves a route name; unknown names are public routes.
func Lookup(name string) Route {
	if route, ok := routes[name]; ok {
		return route
	}
	return Route{Name: name}
}

// SessionVerifier is what the interactive guard needs from a session.
type SessionVerifier interface {
	IsAuthenticated() bool
	Verify(ctx context.Context, cookieToken string, force bool) bool
}

// DecideRenderTime applies the cookie-only rules for the first load: no
// session state exists yet and no network call is made, so the initial
// response is never blocked on a round trip. A token whose exp claim has
// already passed counts as absent.
func DecideRenderTime(to Route, cookieToken string) Outcome {
	if denyWhenAuthenticated[to.Name] && cookieToken != "" {
		return Outcome{Redirect: HomePath}
	}
	if to.RequireAuth {
		if cookieToken == "" || session.TokenExpired(cookieToken, time.Now()) {
			return Outcome{Redirect: LoginPath}
		}
	}
	return Outcome{}
}

// DecideInteractive applies the full rules once a session is available.
// When verification fails, the redirect only happens if the previous route
// also required authentication: a failed background re-check must not
// bounce the user away from content they could already see.
func DecideInteractive(ctx context.Context, to, from Route, cookieToken string, sess SessionVerifier) Outcome {
	if denyWhenAuthenticated[to.Name] && cookieToken != "" {
		return Outcome{Redirect: HomePath}
	}
	if to.RequireAuth && !sess.IsAuthenticated() {
		if !sess.Verify(ctx, cookieToken, false) && from.RequireAuth {
			return Outcome{Redirect: LoginPath}
		}
	}
	return Outcome{}
}
