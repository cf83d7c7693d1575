package memcache_adapter

import (
	"context"
	"sync"
	"time"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/port"
)

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// AnalysisCacheAdapter - потокобезопасный in-memory кэш результатов анализа
// с TTL на запись. Замена записи атомарна (последняя запись побеждает),
// межзаписной согласованности не гарантируется.
type AnalysisCacheAdapter struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewAnalysisCacheAdapter() *AnalysisCacheAdapter {
	return &AnalysisCacheAdapter{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// WithClock подменяет источник времени (для тестов)
func (c *AnalysisCacheAdapter) WithClock(now func() time.Time) *AnalysisCacheAdapter {
	c.now = now
	return c
}

// Get возвращает значение, если оно есть и не протухло.
// Протухшая запись удаляется лениво при обращении.
func (c *AnalysisCacheAdapter) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Перепроверяем под write-блокировкой: запись могли успеть обновить
		if current, still := c.entries[key]; still && c.now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *AnalysisCacheAdapter) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Len возвращает число записей, включая еще не вычищенные протухшие
func (c *AnalysisCacheAdapter) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run периодически вычищает протухшие записи, пока контекст не отменен.
// Ленивого удаления в Get достаточно для корректности, фоновая уборка
// лишь сдерживает рост памяти на редко запрашиваемых ключах.
func (c *AnalysisCacheAdapter) Run(ctx context.Context, interval time.Duration) {
	logger := contextkeys.LoggerFromContext(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cache janitor stopped", nil)
			return
		case <-ticker.C:
			removed := c.sweep()
			if removed > 0 {
				logger.Debug("Cache janitor removed expired entries", port.Fields{
					"removed": removed,
				})
			}
		}
	}
}

func (c *AnalysisCacheAdapter) sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
