package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-bff/internal/app"
	"chat-bff/internal/mocks"
	"chat-bff/internal/models"
	"chat-bff/internal/session"
)

func newTestRegistry() *app.Registry {
	return app.NewRegistry(new(mocks.UpstreamClientMock), "ws://127.0.0.1:1/gateway", time.Hour, nil)
}

func TestRuntimeIsStablePerToken(t *testing.T) {
	registry := newTestRegistry()

	rt := registry.Runtime("tok-1")
	require.NotNil(t, rt)
	assert.Same(t, rt, registry.Runtime("tok-1"))
	assert.NotSame(t, rt, registry.Runtime("tok-2"))
}

func TestRuntimeWiresSessionStoreAndChannel(t *testing.T) {
	registry := newTestRegistry()
	rt := registry.Runtime("tok-1")

	require.NotNil(t, rt.Session())
	require.NotNil(t, rt.Store())
	require.NotNil(t, rt.Channel())
	assert.False(t, rt.Session().IsAuthenticated())
	assert.Nil(t, rt.Channel().Channel())
}

func TestPeekNeverCreates(t *testing.T) {
	registry := newTestRegistry()

	_, ok := registry.Peek("tok-1")
	assert.False(t, ok)

	registry.Runtime("tok-1")
	_, ok = registry.Peek("tok-1")
	assert.True(t, ok)
}

func TestLogoutRemovesRuntime(t *testing.T) {
	registry := newTestRegistry()
	rt := registry.Runtime("tok-1")
	rt.Session().Login(models.User{ID: "u1"}, "tok-1")

	rt.Session().Logout()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := registry.Peek("tok-1"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("runtime never removed after logout")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestUnusedRuntimeSurvives(t *testing.T) {
	// Creating a runtime for a cookie-carried token must not remove it:
	// only a login followed by a logout does.
	registry := newTestRegistry()
	registry.Runtime("tok-1")

	time.Sleep(50 * time.Millisecond)
	_, ok := registry.Peek("tok-1")
	assert.True(t, ok)
}

func TestDiscardUnauthenticatedDropsNeverLoggedInRuntime(t *testing.T) {
	registry := newTestRegistry()
	registry.Runtime("tok-garbage")

	registry.DiscardUnauthenticated("tok-garbage")
	_, ok := registry.Peek("tok-garbage")
	assert.False(t, ok)
}

func TestDiscardUnauthenticatedSparesAuthenticatedRuntime(t *testing.T) {
	registry := newTestRegistry()
	rt := registry.Runtime("tok-1")
	rt.Session().Login(models.User{ID: "u1"}, "tok-1")

	registry.DiscardUnauthenticated("tok-1")
	_, ok := registry.Peek("tok-1")
	assert.True(t, ok)
}

func TestCookieTTLDefaults(t *testing.T) {
	registry := app.NewRegistry(new(mocks.UpstreamClientMock), "", 0, nil)
	assert.Equal(t, session.DefaultCookieTTL, registry.CookieTTL())

	registry = app.NewRegistry(new(mocks.UpstreamClientMock), "", 30*time.Minute, nil)
	assert.Equal(t, 30*time.Minute, registry.CookieTTL())
}
