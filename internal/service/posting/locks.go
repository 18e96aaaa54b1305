package posting

import (
	"sort"
	"sync"
)

// accountLocks serializes balance posting per account within the process.
// Keys are acquired in sorted order so two posts touching overlapping
// account sets cannot deadlock.
type accountLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{m: make(map[string]*sync.Mutex)}
}

func (l *accountLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.m[key]
	if !ok {
		mu = &sync.Mutex{}
		l.m[key] = mu
	}
	return mu
}

// acquire locks every key and returns the release function.
func (l *accountLocks) acquire(keys []string) func() {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	held := make([]*sync.Mutex, 0, len(sorted))
	for _, k := range sorted {
		mu := l.get(k)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
