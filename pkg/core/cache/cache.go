package cache

import (
	"sync"
	"time"
)

// entry is a cached value with expiration
type entry struct {
	value      interface{}
	expiration time.Time
}

func (e *entry) expired() bool {
	if e.expiration.IsZero() {
		return false
	}
	return time.Now().After(e.expiration)
}

// Memo is a small thread-safe in-memory cache with TTL support. It backs
// lookups that are slow or noisy to repeat, such as enumerating audio
// devices, where a short staleness window is acceptable.
type Memo struct {
	mu    sync.Mutex
	items map[string]*entry
	ttl   time.Duration
}

// DefaultTTL is used when no TTL is given
const DefaultTTL = 30 * time.Second

// New creates a memo cache with the given default TTL
func New(ttl time.Duration) *Memo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memo{
		items: make(map[string]*entry),
		ttl:   ttl,
	}
}

// Get retrieves a value, reporting whether a fresh entry existed
func (m *Memo) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if e.expired() {
		delete(m.items, key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the default TTL
func (m *Memo) Set(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = &entry{
		value:      value,
		expiration: time.Now().Add(m.ttl),
	}
}

// Delete removes a single entry
func (m *Memo) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Clear removes all entries
func (m *Memo) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*entry)
}

// GetOrSet returns the cached value or computes and stores it. Errors are
// not cached.
func (m *Memo) GetOrSet(key string, fn func() (interface{}, error)) (interface{}, error) {
	if val, ok := m.Get(key); ok {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		return nil, err
	}

	m.Set(key, val)
	return val, nil
}
