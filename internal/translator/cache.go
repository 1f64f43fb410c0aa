package translator

import (
	"context"
	"sync"
	"time"
)

// CacheEntry 表示缓存条目
type CacheEntry struct {
	Value      string
	CreatedAt  time.Time
	AccessedAt time.Time
}

// Cached 在内存中缓存译文，文档中重复出现的文本（页眉、表头等）只翻译一次
type Cached struct {
	next  Translator
	cache map[string]CacheEntry
	mutex sync.RWMutex
}

// NewCached 创建带缓存的翻译器
func NewCached(next Translator) *Cached {
	return &Cached{
		next:  next,
		cache: make(map[string]CacheEntry),
	}
}

func (c *Cached) Translate(ctx context.Context, text string) (string, error) {
	if v, ok := c.get(text); ok {
		return v, nil
	}
	out, err := c.next.Translate(ctx, text)
	if err != nil {
		return "", err
	}
	c.set(text, out)
	return out, nil
}

func (c *Cached) Name() string { return c.next.Name() }

// Len 返回缓存条目数
func (c *Cached) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// get 从缓存中获取值
func (c *Cached) get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		return "", false
	}

	// 更新访问时间
	entry.AccessedAt = time.Now()
	c.cache[key] = entry

	return entry.Value, true
}

// set 将值存储到缓存中
func (c *Cached) set(key, value string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.cache[key] = CacheEntry{
		Value:      value,
		CreatedAt:  now,
		AccessedAt: now,
	}
}
