package metadata

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/personal-calendar/internal/recurrence"
)

// Memoized wraps a Provider with a per-date cache. Lookups for the same
// calendar day hit the underlying source at most once; failures are not
// cached so a transient error does not poison the date.
type Memoized struct {
	source Provider

	mu      sync.Mutex
	bounded *lru.Cache[string, DayMetadata]
	plain   map[string]DayMetadata
}

// NewMemoized wraps source. A positive size bounds the cache with LRU
// eviction; zero or negative keeps every resolved date for the process
// lifetime, matching the original unbounded lookup caches.
func NewMemoized(source Provider, size int) (*Memoized, error) {
	m := &Memoized{source: source}
	if size > 0 {
		cache, err := lru.New[string, DayMetadata](size)
		if err != nil {
			return nil, fmt.Errorf("create metadata cache: %w", err)
		}
		m.bounded = cache
	} else {
		m.plain = make(map[string]DayMetadata)
	}
	return m, nil
}

// Metadata implements Provider.
func (m *Memoized) Metadata(date time.Time) (DayMetadata, error) {
	key := recurrence.DateKey(date)

	m.mu.Lock()
	if cached, ok := m.get(key); ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	resolved, err := m.source.Metadata(date)
	if err != nil {
		return DayMetadata{}, err
	}

	m.mu.Lock()
	m.put(key, resolved)
	m.mu.Unlock()
	return resolved, nil
}

func (m *Memoized) get(key string) (DayMetadata, bool) {
	if m.bounded != nil {
		return m.bounded.Get(key)
	}
	cached, ok := m.plain[key]
	return cached, ok
}

func (m *Memoized) put(key string, value DayMetadata) {
	if m.bounded != nil {
		m.bounded.Add(key, value)
		return
	}
	m.plain[key] = value
}
