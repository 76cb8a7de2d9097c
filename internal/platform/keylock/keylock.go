package keylock

import "sync"

// Map hands out one mutex per key. Entries are dropped once no goroutine
// holds or waits for them, so the map stays proportional to in-flight keys.
type Map struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func New() *Map {
	return &Map{locks: make(map[string]*refLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (m *Map) Lock(key string) func() {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[string]*refLock)
	}
	l, ok := m.locks[key]
	if !ok {
		l = &refLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			m.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(m.locks, key)
			}
			m.mu.Unlock()
		})
	}
}

func (m *Map) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
