package memcache_adapter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock - управляемое время для проверки TTL без time.Sleep
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAnalysisCacheAdapter_SetAndGet(t *testing.T) {
	cache := NewAnalysisCacheAdapter().WithClock(newManualClock().Now)

	cache.Set("market_position:tirana", 42.5, time.Hour)

	value, ok := cache.Get("market_position:tirana")
	require.True(t, ok)
	assert.Equal(t, 42.5, value)

	_, ok = cache.Get("unknown_key")
	assert.False(t, ok)
}

func TestAnalysisCacheAdapter_EntryExpires(t *testing.T) {
	clock := newManualClock()
	cache := NewAnalysisCacheAdapter().WithClock(clock.Now)

	cache.Set("scarcity_score:abc", 77, time.Hour)

	clock.Advance(59 * time.Minute)
	_, ok := cache.Get("scarcity_score:abc")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = cache.Get("scarcity_score:abc")
	assert.False(t, ok)
	// Протухшая запись удалена лениво при чтении
	assert.Equal(t, 0, cache.Len())
}

func TestAnalysisCacheAdapter_LastWriteWins(t *testing.T) {
	cache := NewAnalysisCacheAdapter().WithClock(newManualClock().Now)

	cache.Set("roi_estimate:abc", "first", time.Hour)
	cache.Set("roi_estimate:abc", "second", time.Hour)

	value, ok := cache.Get("roi_estimate:abc")
	require.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestAnalysisCacheAdapter_OverwriteRefreshesTTL(t *testing.T) {
	clock := newManualClock()
	cache := NewAnalysisCacheAdapter().WithClock(clock.Now)

	cache.Set("agent_insights:alba", 1, time.Hour)
	clock.Advance(50 * time.Minute)
	cache.Set("agent_insights:alba", 2, time.Hour)
	clock.Advance(50 * time.Minute)

	value, ok := cache.Get("agent_insights:alba")
	require.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestAnalysisCacheAdapter_NonPositiveTTLIgnored(t *testing.T) {
	cache := NewAnalysisCacheAdapter().WithClock(newManualClock().Now)

	cache.Set("key", "value", 0)
	cache.Set("key", "value", -time.Minute)

	_, ok := cache.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestAnalysisCacheAdapter_SweepRemovesOnlyExpired(t *testing.T) {
	clock := newManualClock()
	cache := NewAnalysisCacheAdapter().WithClock(clock.Now)

	cache.Set("short", 1, time.Minute)
	cache.Set("long", 2, time.Hour)
	clock.Advance(5 * time.Minute)

	removed := cache.sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("long")
	assert.True(t, ok)
}

func TestAnalysisCacheAdapter_ConcurrentAccess(t *testing.T) {
	cache := NewAnalysisCacheAdapter()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set("shared", j, time.Hour)
				cache.Get("shared")
			}
		}()
	}
	wg.Wait()

	_, ok := cache.Get("shared")
	assert.True(t, ok)
}
