package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/edgelink/internal/kv"
	"github.com/axellelanca/edgelink/internal/logging"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(limit int) (*Limiter, *clock) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := kv.NewMemoryStore(kv.WithClock(c.now))
	return New(store, limit, time.Minute, logging.Discard(), WithClock(c.now)), c
}

func TestCheckAndIncrement_CeilingAndReset(t *testing.T) {
	l, c := newTestLimiter(3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d := l.CheckAndIncrement(ctx, "10.0.0.1")
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d := l.CheckAndIncrement(ctx, "10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Minute, d.RetryAfter)

	// other clients have their own window
	assert.True(t, l.CheckAndIncrement(ctx, "10.0.0.2").Allowed)

	c.t = c.t.Add(time.Minute + time.Second)
	d = l.CheckAndIncrement(ctx, "10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}

func TestCheckAndIncrement_WindowIsAnchoredToFirstRequest(t *testing.T) {
	l, c := newTestLimiter(2)
	ctx := context.Background()

	first := l.CheckAndIncrement(ctx, "a")
	c.t = c.t.Add(50 * time.Second)
	second := l.CheckAndIncrement(ctx, "a")
	assert.Equal(t, first.ResetAt, second.ResetAt)

	assert.False(t, l.CheckAndIncrement(ctx, "a").Allowed)
	c.t = c.t.Add(10 * time.Second)
	assert.True(t, l.CheckAndIncrement(ctx, "a").Allowed)
}

func TestCheckAndIncrement_Disabled(t *testing.T) {
	l, _ := newTestLimiter(0)
	for range 10 {
		assert.True(t, l.CheckAndIncrement(context.Background(), "a").Allowed)
	}
}

type failingStore struct{ kv.Store }

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func TestCheckAndIncrement_FailsOpen(t *testing.T) {
	l := New(failingStore{kv.NewMemoryStore()}, 1, time.Minute, logging.Discard())
	for range 3 {
		assert.True(t, l.CheckAndIncrement(context.Background(), "a").Allowed)
	}
}

func TestCheckAndIncrement_MalformedWindowStartsOver(t *testing.T) {
	l, _ := newTestLimiter(1)
	ctx := context.Background()
	require.NoError(t, l.store.Put(ctx, keyPrefix+"a", "not-json", 0))

	assert.True(t, l.CheckAndIncrement(ctx, "a").Allowed)
	assert.False(t, l.CheckAndIncrement(ctx, "a").Allowed)
}
