package docstore

// The memory driver keeps the whole tree in a map guarded by an RWMutex. It
// backs tests and local development while keeping code paths identical to
// the real drivers.

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/openbooks/ledger/internal/errs"
)

// Memory is an in-memory Store implementation safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]json.RawMessage)}
}

// Reset drops every document. Test helper.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.docs = make(map[string]json.RawMessage)
	m.mu.Unlock()
}

func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.docs[path]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *Memory) Set(_ context.Context, path string, doc json.RawMessage) error {
	cp := make(json.RawMessage, len(doc))
	copy(cp, doc)
	m.mu.Lock()
	m.docs[path] = cp
	m.mu.Unlock()
	return nil
}

// Apply validates every target and guard first, then mutates; the single
// write lock makes the batch all-or-nothing.
func (m *Memory) Apply(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	merged := make([]json.RawMessage, len(writes))
	for i, w := range writes {
		raw, ok := m.docs[w.Path]
		if !ok {
			return errs.ErrNotFound
		}
		if err := checkGuard(raw, w.Guard); err != nil {
			return err
		}
		out, err := mergeFields(raw, w.Fields)
		if err != nil {
			return err
		}
		merged[i] = out
	}
	for i, w := range writes {
		m.docs[w.Path] = merged[i]
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	delete(m.docs, path)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]json.RawMessage)
	for p, raw := range m.docs {
		if strings.HasPrefix(p, prefix) {
			cp := make(json.RawMessage, len(raw))
			copy(cp, raw)
			out[p] = cp
		}
	}
	return out, nil
}

func (m *Memory) Query(ctx context.Context, prefix, field string, value any) (map[string]json.RawMessage, error) {
	all, err := m.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage)
	for p, raw := range all {
		if fieldEquals(raw, field, value) {
			out[p] = raw
		}
	}
	return out, nil
}

func (m *Memory) Ready(context.Context) error { return nil }
