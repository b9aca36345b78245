package invoker

import (
	"sort"
	"sync"
)

// Cache keeps one generated invoker per identity for the life of the
// process.
type Cache struct {
	mu         sync.RWMutex
	byIdentity map[string]*Generated
	byName     map[string]*Generated
}

func NewCache() *Cache {
	return &Cache{
		byIdentity: make(map[string]*Generated),
		byName:     make(map[string]*Generated),
	}
}

// GetOrGenerate returns the invoker cached for info's identity, generating
// it on first request. The boolean reports a cache hit.
func (c *Cache) GetOrGenerate(info *Info, generate func(*Info) (*Generated, error)) (*Generated, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen, ok := c.byIdentity[info.Identity()]; ok {
		return gen, true, nil
	}

	gen, err := generate(info)
	if err != nil {
		return nil, false, err
	}

	c.byIdentity[info.Identity()] = gen
	c.byName[gen.Name()] = gen
	return gen, false, nil
}

func (c *Cache) Get(name string) (*Generated, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	gen, ok := c.byName[name]
	return gen, ok
}

func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.byIdentity)
}
