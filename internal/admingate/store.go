package admingate

import (
	"errors"
	"sync"

	"github.com/gorilla/sessions"
)

var ErrStoreUnavailable = errors.New("admin gate: session store unavailable")

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Load(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// SessionStore keeps gate flags in a gorilla session. The caller saves the
// session after the request has modified it.
type SessionStore struct {
	Session *sessions.Session
}

func (s SessionStore) Load(key string) (string, error) {
	if s.Session == nil {
		return "", ErrStoreUnavailable
	}
	v, _ := s.Session.Values[key].(string)
	return v, nil
}

func (s SessionStore) Save(key, value string) error {
	if s.Session == nil {
		return ErrStoreUnavailable
	}
	s.Session.Values[key] = value
	return nil
}

func (s SessionStore) Remove(key string) error {
	if s.Session == nil {
		return ErrStoreUnavailable
	}
	delete(s.Session.Values, key)
	return nil
}
