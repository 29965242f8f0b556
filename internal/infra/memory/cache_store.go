package memory

import (
	"context"
	"sort"
	"sync"

	"periodic-table-service/internal/domain"
)

// CacheStore is an in-memory implementation of app.CacheStore.
type CacheStore struct {
	mu     sync.RWMutex
	caches map[string]map[string]domain.CachedResponse
}

func NewCacheStore() *CacheStore {
	return &CacheStore{
		caches: make(map[string]map[string]domain.CachedResponse),
	}
}

func (s *CacheStore) Names(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.caches))
	for name := range s.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *CacheStore) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caches[name]; !ok {
		return false, nil
	}
	delete(s.caches, name)
	return true, nil
}

func (s *CacheStore) PutAll(_ context.Context, name string, entries []domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cache := s.openLocked(name)
	for _, e := range entries {
		cache[e.Key] = e.Response.Clone()
	}
	return nil
}

func (s *CacheStore) Put(_ context.Context, name, key string, resp domain.CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openLocked(name)[key] = resp.Clone()
	return nil
}

func (s *CacheStore) Match(_ context.Context, name, key string) (domain.CachedResponse, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.caches[name][key]
	if !ok {
		return domain.CachedResponse{}, false, nil
	}
	return resp.Clone(), true, nil
}

func (s *CacheStore) openLocked(name string) map[string]domain.CachedResponse {
	cache, ok := s.caches[name]
	if !ok {
		cache = make(map[string]domain.CachedResponse)
		s.caches[name] = cache
	}
	return cache
}
