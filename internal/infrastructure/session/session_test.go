package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", "garmentshop", time.Hour, nil)
	require.NoError(t, err)
	return m
}

func TestIssueAndParse(t *testing.T) {
	m := newManager(t)
	s := domacct.Session{ID: "sid-1", Username: "jo", IssuedAt: time.Now().UTC().Truncate(time.Second)}

	token, expires, err := m.Issue(s)
	require.NoError(t, err)
	assert.WithinDuration(t, s.IssuedAt.Add(time.Hour), expires, time.Second)

	got, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", got.ID)
	assert.Equal(t, "jo", got.Username)
	assert.True(t, s.IssuedAt.Equal(got.IssuedAt))
}

func TestIssueRequiresUser(t *testing.T) {
	_, _, err := newManager(t).Issue(domacct.Session{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", "", time.Hour, nil)
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	m := newManager(t)
	other, err := NewManager("another-secret", "garmentshop", time.Hour, nil)
	require.NoError(t, err)
	foreign, _, err := other.Issue(domacct.Session{ID: "sid", Username: "jo"})
	require.NoError(t, err)

	expired := newManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue(domacct.Session{ID: "sid", Username: "jo"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "jo"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"unsigned":     none,
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestRevoke(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	token, _, err := m.Issue(domacct.Session{ID: "sid-2", Username: "kim"})
	require.NoError(t, err)
	keep, _, err := m.Issue(domacct.Session{ID: "sid-3", Username: "kim"})
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, token))
	_, err = m.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrRevoked)

	_, err = m.Parse(ctx, keep)
	assert.NoError(t, err)
}

func TestMemoryRevocationsExpire(t *testing.T) {
	r := NewMemoryRevocations()
	ctx := context.Background()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "old", now.Add(-time.Minute)))

	ok, err := r.Revoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Revoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = r.Revoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRevocations(t *testing.T) {
	addr := os.Getenv("SHOP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SHOP_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	r := NewRedisRevocations(client, "garmentshop-test:revoked:")
	sid := "sid-" + time.Now().Format("150405.000000")
	require.NoError(t, r.Revoke(ctx, sid, time.Now().Add(time.Minute)))
	ok, err := r.Revoked(ctx, sid)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Revoked(ctx, sid+"-other")
	require.NoError(t, err)
	assert.False(t, ok)
}
