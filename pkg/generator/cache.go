package generator

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache は go-cache を使った ImageCacher のデフォルト実装です。
// TTL 付きのインメモリキャッシュで、プロセス内でのみ有効です。
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache は MemoryCache を初期化します。
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(key string) (any, bool) {
	return m.c.Get(key)
}

func (m *MemoryCache) Set(key string, value any, d time.Duration) {
	m.c.Set(key, value, d)
}
