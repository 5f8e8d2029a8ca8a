package judge

import "sync"

// GuidanceCache holds the guardian-feedback guidance string in-process, by
// value, so every Judge call doesn't hit the settings store. The learning
// loop calls Set after each successful merge; readers always see either
// the previous or the newest value, never a torn one.
type GuidanceCache struct {
	mu    sync.RWMutex
	value string
}

// NewGuidanceCache returns an empty cache.
func NewGuidanceCache() *GuidanceCache {
	return &GuidanceCache{}
}

// Get returns the currently cached guidance string, or "" if none has been
// set yet.
func (c *GuidanceCache) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the cached guidance string. Invalidates any previously
// cached value by simple overwrite.
func (c *GuidanceCache) Set(guidance string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = guidance
}
