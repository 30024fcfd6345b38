package assets

import (
	"context"
	"sync"
)

// Memory keeps assets in a map. Safe for concurrent use. Tests use it in
// place of Disk; Put, Get and Len let them seed and inspect its contents.
type Memory struct {
	baseURL string

	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns an empty store whose URLs are rooted at baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: baseURL,
		files:   make(map[string][]byte),
	}
}

// Store saves a copy of u under namespace with a generated name.
func (m *Memory) Store(ctx context.Context, namespace string, u Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := newPath(namespace, u)
	if err != nil {
		return "", err
	}
	data := make([]byte, len(u.Data))
	copy(data, u.Data)

	m.mu.Lock()
	m.files[p] = data
	m.mu.Unlock()
	return p, nil
}

// Exists reports whether p is stored.
func (m *Memory) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	clean, err := cleanPath(p)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	_, ok := m.files[clean]
	m.mu.RUnlock()
	return ok, nil
}

// Delete removes p, reporting false when it was not stored.
func (m *Memory) Delete(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	clean, err := cleanPath(p)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[clean]; !ok {
		return false, nil
	}
	delete(m.files, clean)
	return true, nil
}

// PublicURL maps p under the base URL.
func (m *Memory) PublicURL(p string) string {
	return publicURL(m.baseURL, p)
}

// Put seeds a file at an exact path, bypassing name generation. The path
// must pass the same checks Exists and Delete apply.
func (m *Memory) Put(p string, data []byte) error {
	clean, err := cleanPath(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.files[clean] = data
	m.mu.Unlock()
	return nil
}

// Get returns the stored bytes for p.
func (m *Memory) Get(p string) ([]byte, bool) {
	clean, err := cleanPath(p)
	if err != nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[clean]
	return data, ok
}

// Len returns the number of stored files.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
