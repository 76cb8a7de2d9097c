package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is an in-process TTL cache. Concurrent misses for one key share a
// single loader call. A zero TTL keeps entries until they are deleted.
//
// Every Delete bumps the key's generation. A load that started before the
// bump neither stores its result nor is joined by later callers, so a write
// followed by Delete is never masked by an older read.
type Store[V any] struct {
	mu          sync.Mutex
	entries     map[string]entry[V]
	generations map[string]uint64
	ttl         time.Duration
	flight      singleflight.Group
	now         func() time.Time
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		entries:     make(map[string]entry[V]),
		generations: make(map[string]uint64),
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *Store[V]) getLocked(key string) (V, bool) {
	var zero V
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.now()) {
		delete(s.entries, key)
		return zero, false
	}
	return e.value, true
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	s.mu.Lock()
	s.setLocked(key, value)
	s.mu.Unlock()
}

func (s *Store[V]) setLocked(key string, value V) {
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}
	s.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
}

func (s *Store[V]) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.generations[key]++
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or runs loader once per key and
// generation. Loader errors are never cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, errors.New("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	s.mu.Lock()
	if value, ok := s.getLocked(key); ok {
		s.mu.Unlock()
		return value, nil
	}
	gen := s.generations[key]
	s.mu.Unlock()

	out, err, _ := s.flight.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.generations[key] == gen {
			s.setLocked(key, loaded)
		}
		s.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}
	value, ok := out.(V)
	if !ok {
		return zero, errors.Newf("unexpected cached type %T", out)
	}
	return value, nil
}
