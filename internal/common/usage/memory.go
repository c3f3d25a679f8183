package usage

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is a process-local Backend for tests and the CLI.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	lists  map[string][]string
	now    func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryEntry),
		lists:  make(map[string][]string),
		now:    time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	return e.value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = memoryEntry{value: value, expires: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		e = memoryEntry{value: "0", expires: s.expiry(ttl)}
	}
	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	s.values[key] = e
	return n, nil
}

func (s *MemoryStore) Push(_ context.Context, key, value string, max int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.lists[key], value)
	if max > 0 && int64(len(list)) > max {
		list = list[int64(len(list))-max:]
	}
	s.lists[key] = list
	return nil
}

func (s *MemoryStore) Range(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lists[key]))
	copy(out, s.lists[key])
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// live must be called with mu held.
func (s *MemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := s.values[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.values, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}
