package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-bff/internal/models"
)

type countingVerifier struct {
	mu    sync.Mutex
	calls int
	user  models.User
	err   error
}

func (v *countingVerifier) Verify(ctx context.Context, token string) (models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.err != nil {
		return models.User{}, v.err
	}
	return v.user, nil
}

func (v *countingVerifier) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func signedToken(t *testing.T, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Email:  userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestLoginPopulatesSessionAndClaims(t *testing.T) {
	s := New(nil)
	token := signedToken(t, "u1", time.Now().Add(time.Hour))

	s.Login(models.User{ID: "u1", Email: "u1@example.com"}, token)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, token, s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)
	assert.Equal(t, "u1", s.UserID())
}

func TestVerifyCacheHitSkipsNetwork(t *testing.T) {
	verifier := &countingVerifier{user: models.User{ID: "u1"}}
	s := New(verifier)
	token := signedToken(t, "u1", time.Now().Add(time.Hour))

	require.True(t, s.Verify(context.Background(), token, false))
	assert.Equal(t, 1, verifier.count())

	// Subsequent unforced verifies trust the cache.
	for i := 0; i < 5; i++ {
		require.True(t, s.Verify(context.Background(), token, false))
	}
	assert.Equal(t, 1, verifier.count())

	// Forcing always pays the round trip.
	require.True(t, s.Verify(context.Background(), token, true))
	assert.Equal(t, 2, verifier.count())
}

func TestVerifyWithoutCookieTokenSkipsNetwork(t *testing.T) {
	verifier := &countingVerifier{user: models.User{ID: "u1"}}
	s := New(verifier)

	assert.False(t, s.Verify(context.Background(), "", false))
	assert.Equal(t, 0, verifier.count())
}

func TestVerifyFailureForcesLogout(t *testing.T) {
	verifier := &countingVerifier{err: errors.New("boom")}
	s := New(verifier)
	token := signedToken(t, "u1", time.Now().Add(time.Hour))

	assert.False(t, s.Verify(context.Background(), token, false))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestLogoutThenVerifyReturnsFalseWithoutNetwork(t *testing.T) {
	verifier := &countingVerifier{user: models.User{ID: "u1"}}
	s := New(verifier)
	token := signedToken(t, "u1", time.Now().Add(time.Hour))

	require.True(t, s.Verify(context.Background(), token, false))
	s.Logout()

	assert.False(t, s.Verify(context.Background(), "", false))
	assert.Equal(t, 1, verifier.count())
}

func TestVerifyResynchronizesWhenCookieVanishes(t *testing.T) {
	verifier := &countingVerifier{user: models.User{ID: "u1"}}
	s := New(verifier)
	s.Login(models.User{ID: "u1"}, "tok")

	// Cookie gone while memory still says authenticated: verify clears it.
	assert.False(t, s.Verify(context.Background(), "", false))
	assert.False(t, s.IsAuthenticated())
}

func TestVerifyWithDifferentCookieTokenRefetches(t *testing.T) {
	verifier := &countingVerifier{user: models.User{ID: "u2"}}
	s := New(verifier)
	s.Login(models.User{ID: "u1"}, "old-token")

	require.True(t, s.Verify(context.Background(), "new-token", false))
	assert.Equal(t, 1, verifier.count())
	assert.Equal(t, "new-token", s.Token())
	assert.Equal(t, "u2", s.User().ID)
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := New(nil)
	var transitions []string
	s.Watch(func(token string) {
		transitions = append(transitions, token)
	})

	s.Login(models.User{ID: "u1"}, "tok")
	s.Logout()
	s.Logout()
	s.Logout()

	// Initial delivery, login, then exactly one logout notification.
	assert.Equal(t, []string{"", "tok", ""}, transitions)
}

func TestWatchDeliversCurrentTokenImmediately(t *testing.T) {
	s := New(nil)
	s.Login(models.User{ID: "u1"}, "tok")

	var got string
	s.Watch(func(token string) { got = token })
	assert.Equal(t, "tok", got)
}

func TestDecodeClaims(t *testing.T) {
	token := signedToken(t, "u9", time.Now().Add(30*time.Minute))

	claims, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u9", claims.UserID)
	assert.Equal(t, "u9@example.com", claims.Email)

	_, err = DecodeClaims("not-a-jwt")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	live := signedToken(t, "u1", now.Add(time.Hour))
	dead := signedToken(t, "u1", now.Add(-time.Minute))

	assert.False(t, TokenExpired(live, now))
	assert.True(t, TokenExpired(dead, now))
	// Undecodable tokens are left for upstream verification to judge.
	assert.False(t, TokenExpired("garbage", now))
}
