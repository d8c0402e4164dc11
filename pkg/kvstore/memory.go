package kvstore

import "sync"

// Memory keeps slots in process memory. Nothing survives a restart.
type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: map[string][]byte{}}
}

func (m *Memory) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.slots[key] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
