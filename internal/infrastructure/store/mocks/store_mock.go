package mocks

import (
	"context"
	"sync"
	"time"
)

// MockStore is a mock implementation of store.Store for testing
type MockStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// Failure injection
	GetErr    error
	SetErr    error
	DeleteErr error

	// For tracking calls in tests
	GetCalls    []string
	SetCalls    []SetCall
	DeleteCalls []string
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value []byte
	TTL   time.Duration
}

// NewMockStore creates a new MockStore
func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]byte)}
}

// Get retrieves a value
func (m *MockStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores a value
func (m *MockStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value, TTL: ttl})
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

// Delete removes a value
func (m *MockStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

// Seed stores value under key without recording a call.
func (m *MockStore) Seed(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Has reports whether key is present.
func (m *MockStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// Reset clears all data and recorded calls
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)
	m.GetErr, m.SetErr, m.DeleteErr = nil, nil, nil
	m.GetCalls = nil
	m.SetCalls = nil
	m.DeleteCalls = nil
}
