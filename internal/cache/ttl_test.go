package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTTL_FreshnessWindow(t *testing.T) {
	clk := &clock{now: time.Unix(1000, 0)}
	c := New[[]string](DefaultTTL, clk.Now)

	_, ok := c.Get()
	require.False(t, ok, "empty cache misses")

	c.Set([]string{"a"})
	clk.Advance(DefaultTTL - time.Second)
	v, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, []string{"a"}, v)

	age, ok := c.Age()
	require.True(t, ok)
	require.Equal(t, DefaultTTL-time.Second, age)

	clk.Advance(time.Second)
	_, ok = c.Get()
	require.False(t, ok, "window is exclusive at its end")
}

func TestTTL_ReturnsSameValue(t *testing.T) {
	type listing struct{ items []int }
	c := New[*listing](time.Minute, nil)

	stored := &listing{items: []int{1, 2}}
	c.Set(stored)

	first, ok := c.Get()
	require.True(t, ok)
	second, ok := c.Get()
	require.True(t, ok)
	require.Same(t, stored, first)
	require.Same(t, first, second)
}

func TestTTL_Invalidate(t *testing.T) {
	c := New[int](time.Minute, nil)
	c.Set(7)
	c.Invalidate()

	_, ok := c.Get()
	require.False(t, ok)
	_, ok = c.Age()
	require.False(t, ok)
}

func TestTTL_SetRestartsWindow(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	c := New[int](time.Minute, clk.Now)

	c.Set(1)
	clk.Advance(50 * time.Second)
	c.Set(2)
	clk.Advance(50 * time.Second)

	v, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestTTL_ConcurrentUse(t *testing.T) {
	c := New[int](time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(n)
			c.Get()
			c.Age()
		}(i)
	}
	wg.Wait()

	_, ok := c.Get()
	require.True(t, ok)
}
