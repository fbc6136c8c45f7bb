package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, 0, m.Len())

	m.Set("key1", "value1")
	value, ok := m.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", value)

	m.Set("key1", "value2")
	value, _ = m.Get("key1")
	assert.Equal(t, "value2", value)
	assert.Equal(t, 1, m.Len())

	_, ok = m.Get("nonexistent")
	assert.False(t, ok)

	prev, ok := m.Delete("key1")
	assert.True(t, ok)
	assert.Equal(t, "value2", prev)
	assert.Equal(t, 0, m.Len())

	prev, ok = m.Delete("key1")
	assert.False(t, ok)
	assert.Empty(t, prev)
}
