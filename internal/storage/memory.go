package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in process. Used for local runs and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	objects   map[string]Object
	publicURL string
}

// Object is a stored blob with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

func NewMemoryStore(publicURL string) *MemoryStore {
	return &MemoryStore{objects: map[string]Object{}, publicURL: publicURL}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), obj.Data...), nil
}

func (m *MemoryStore) URL(key string) string {
	return PublicURL(m.publicURL, key)
}

// Objects returns a snapshot of stored objects keyed by object key.
func (m *MemoryStore) Objects() map[string]Object {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Object, len(m.objects))
	for k, v := range m.objects {
		out[k] = v
	}
	return out
}
