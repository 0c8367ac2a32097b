package coesnap

import "sync"

// Cache is the per-RepoHandle mutable mapping checks may populate with
// intermediate parse results to amortize cost across checks that share
// data.
//
// Keys are conventionally "<check_id>_<repo_id>", though GetOrCompute
// works with any string key — callers that want cross-check sharing use a
// key that omits the check id.
type Cache struct {
	mu      sync.Mutex
	values  map[string]any
	pending map[string]*sync.WaitGroup
}

func newCache() *Cache {
	return &Cache{
		values:  make(map[string]any),
		pending: make(map[string]*sync.WaitGroup),
	}
}

// GetOrCompute returns the cached value for key, computing it at most once
// even when multiple in-flight checks on the same repository race on the
// same key. A failed compute is not cached; the next caller retries.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	for {
		c.mu.Lock()
		if v, ok := c.values[key]; ok {
			c.mu.Unlock()
			return v, nil
		}
		if wg, inFlight := c.pending[key]; inFlight {
			c.mu.Unlock()
			wg.Wait()
			continue
		}

		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.pending[key] = wg
		c.mu.Unlock()

		v, err := compute()

		c.mu.Lock()
		delete(c.pending, key)
		if err == nil {
			c.values[key] = v
		}
		c.mu.Unlock()
		wg.Done()

		return v, err
	}
}

// clear drops every entry. Called when the owning RepoHandle's scope exits.
func (c *Cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]any)
	c.pending = make(map[string]*sync.WaitGroup)
}
