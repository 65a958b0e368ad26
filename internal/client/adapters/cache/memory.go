package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"sharenotes/internal/client/ports/cache"
)

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// MemoryCache - кэш в памяти процесса, используется без Redis.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]memoryItem
	defaultTTL time.Duration
	now        func() time.Time
}

var _ cache.Cache = (*MemoryCache)(nil)

// NewMemoryCache создает кэш в памяти.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]memoryItem),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// lookup возвращает живой элемент, удаляя просроченный. Вызывается под mu.
func (c *MemoryCache) lookup(key string) (memoryItem, bool) {
	item, ok := c.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		delete(c.items, key)
		return memoryItem{}, false
	}
	return item, true
}

func (c *MemoryCache) expiry(ttl time.Duration) time.Time {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

// Get получает значение по ключу.
func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, _ := c.lookup(key)
	return item.value, nil
}

// Set устанавливает значение для ключа.
func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = memoryItem{value: value, expiresAt: c.expiry(ttl)}
	return nil
}

// Incr увеличивает счетчик; время жизни задается только новому ключу.
func (c *MemoryCache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.lookup(key)
	if !ok {
		item = memoryItem{expiresAt: c.expiry(ttl)}
	}
	n, _ := strconv.ParseInt(item.value, 10, 64)
	n++
	item.value = strconv.FormatInt(n, 10)
	c.items[key] = item
	return n, nil
}

// Delete удаляет значение по ключу.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Close очищает кэш.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]memoryItem)
	return nil
}
