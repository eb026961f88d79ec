package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache[string, int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)}
	c := New[string, int](ttl)
	c.SetClock(clock.Now)
	return c, clock
}

func TestNewDefaultsTTL(t *testing.T) {
	c := New[string, int](0)
	assert.Equal(t, DefaultTTL, c.TTL())
	assert.Equal(t, 53*time.Minute+20*time.Second, DefaultTTL)
}

func TestGetSet(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	clock.Advance(59 * time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok, "entry should survive until the TTL elapses")

	clock.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry should expire once the TTL elapses")
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on lookup")
}

func TestSetResetsExpiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	c.Set("a", 1)
	clock.Advance(50 * time.Second)
	c.Set("a", 2)
	clock.Advance(50 * time.Second)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestGetOrLoad(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	calls := 0
	load := func() (int, error) {
		calls++
		return calls * 10, nil
	}

	v, hit, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 10, v)

	v, hit, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Minute)
	v, hit, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 20, v)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	boom := errors.New("boom")

	_, _, err := c.GetOrLoad("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, hit, err := c.GetOrLoad("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
}

func TestPurge(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestStructKeys(t *testing.T) {
	type key struct {
		user   string
		offset int
	}
	c := New[key, string](time.Minute)
	c.Set(key{"u", 0}, "first")
	c.Set(key{"u", 500}, "second")

	v, ok := c.Get(key{"u", 500})
	require.True(t, ok)
	assert.Equal(t, "second", v)
}
