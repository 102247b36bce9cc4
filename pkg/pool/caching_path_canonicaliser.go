package pool

import (
	"sync"

	"github.com/buildbarn/bb-storage/pkg/eviction"
)

// cachingPathCanonicaliser memoizes a base PathCanonicaliser behind a
// bounded cache, so that repeated calls for the same path (the common
// case, since Manager.GetHandler() canonicalises on every call) don't
// each touch the filesystem. Eviction from the cache is unconditional
// — unlike the descriptor eviction policies in eviction_policy.go,
// there is no notion of a cached path being "busy" — which is exactly
// the shape github.com/buildbarn/bb-storage/pkg/eviction.Set provides.
type cachingPathCanonicaliser struct {
	base         PathCanonicaliser
	maximumCount int

	lock        sync.Mutex
	canonical   map[string]string
	evictionSet eviction.Set[string]
}

// NewCachingPathCanonicaliser creates a PathCanonicaliser that caches
// up to maximumCount resolved paths in memory, evicting according to
// evictionSet once that bound is reached.
func NewCachingPathCanonicaliser(base PathCanonicaliser, maximumCount int, evictionSet eviction.Set[string]) PathCanonicaliser {
	return &cachingPathCanonicaliser{
		base:         base,
		maximumCount: maximumCount,
		canonical:    map[string]string{},
		evictionSet:  evictionSet,
	}
}

func (c *cachingPathCanonicaliser) Canonicalize(path string) (string, error) {
	c.lock.Lock()
	if canonical, ok := c.canonical[path]; ok {
		c.evictionSet.Touch(path)
		c.lock.Unlock()
		return canonical, nil
	}
	c.lock.Unlock()

	canonical, err := c.base.Canonicalize(path)
	if err != nil {
		return "", err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.canonical[path]; !ok {
		for len(c.canonical) >= c.maximumCount {
			victim := c.evictionSet.Peek()
			c.evictionSet.Remove()
			delete(c.canonical, victim)
		}
		c.canonical[path] = canonical
		c.evictionSet.Insert(path)
	}
	return canonical, nil
}
