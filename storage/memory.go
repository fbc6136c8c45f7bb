package storage

// Memory is the in-memory key-value map. It is not safe for concurrent
// use; an Owner serializes every access to it.
type Memory struct {
	data map[string]string
}

// NewMemory creates an empty map
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]string),
	}
}

// Set stores value under key, discarding any previous value
func (m *Memory) Set(key, value string) {
	m.data[key] = value
}

// Get returns the value stored under key
func (m *Memory) Get(key string) (string, bool) {
	value, ok := m.data[key]
	return value, ok
}

// Delete removes key and returns the value it held, if any
func (m *Memory) Delete(key string) (string, bool) {
	value, ok := m.data[key]
	if ok {
		delete(m.data, key)
	}
	return value, ok
}

// Len returns the number of keys
func (m *Memory) Len() int {
	return len(m.data)
}
