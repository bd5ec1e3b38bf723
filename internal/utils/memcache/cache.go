package memcache

import (
	"sync"
	"time"
)

// Cache 显式注入的内存缓存：key → {value, expiry}
// TTL 与容量由构造参数决定，不依赖包级可变状态，便于单测隔离
type Cache[V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry[V]
	now        func() time.Time // 可注入时钟（测试用）
}

type entry[V any] struct {
	value    V
	expireAt time.Time
}

// New 创建缓存。maxEntries<=0 表示不限容量
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry[V]),
		now:        time.Now,
	}
}

// Get 命中且未过期时返回值；过期条目顺带删除
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expireAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set 写入条目；超出容量时先清理过期项，仍超出则整体重置（简单粗暴，避免引入 LRU 依赖）
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		now := c.now()
		for k, e := range c.entries {
			if now.After(e.expireAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.maxEntries {
			c.entries = make(map[string]entry[V])
		}
	}
	c.entries[key] = entry[V]{value: value, expireAt: c.now().Add(c.ttl)}
}

// Invalidate 删除指定条目
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge 清空全部条目
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}
