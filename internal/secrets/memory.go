package secrets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory secret store for tests and local mode.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		secrets: make(map[string]string),
	}
}

func (m *MemoryStore) GetSecret(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.secrets[id]
	if !ok {
		return "", fmt.Errorf("reading secret %q: %w", id, ErrNotFound)
	}
	return value, nil
}

func (m *MemoryStore) PutSecret(ctx context.Context, id, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[id] = value
	return nil
}

func (m *MemoryStore) DeleteSecret(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, id)
	return nil
}
