package mock

import (
	"context"
	"sync"

	"inkwell/app/repositories"
)

// Store is an in-memory KVStore for tests.
type Store struct {
	data  map[string][]byte
	mutex sync.RWMutex

	// Fail, when set, is returned by every Put.
	Fail error
	// Puts counts successful writes.
	Puts int
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (m *Store) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[string][]byte)
	m.Puts = 0
}

func (m *Store) Get(ctx context.Context, key string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Store) Put(ctx context.Context, key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Fail != nil {
		return m.Fail
	}
	m.data[key] = append([]byte(nil), value...)
	m.Puts++
	return nil
}

func (m *Store) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Store) Close() error {
	return nil
}
