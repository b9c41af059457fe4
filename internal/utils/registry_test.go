package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BasicOperations(t *testing.T) {
	registry := NewRegistry[string, int]("numbers")
	assert.Equal(t, 0, registry.Size())

	registry.Register("key1", 42)
	value, exists := registry.Get("key1")
	require.True(t, exists)
	assert.Equal(t, 42, value)
	assert.True(t, registry.Has("key1"))
	assert.False(t, registry.Has("nonexistent"))

	registry.Register("key1", 43)
	value, _ = registry.Get("key1")
	assert.Equal(t, 43, value)
	assert.Equal(t, 1, registry.Size())
}

func TestRegistry_RegisterUnique(t *testing.T) {
	registry := NewRegistry[string, string]("providers")

	require.NoError(t, registry.RegisterUnique("default", "a"))
	err := registry.RegisterUnique("default", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "providers")
	assert.Contains(t, err.Error(), "default")

	value, _ := registry.Get("default")
	assert.Equal(t, "a", value)
}

func TestRegistry_ListIsSorted(t *testing.T) {
	registry := NewRegistry[string, bool]("names")
	for _, name := range []string{"orders", "accounts", "users"} {
		registry.Register(name, true)
	}

	assert.Equal(t, []string{"accounts", "orders", "users"}, registry.List())
}

func TestRegistry_Clone(t *testing.T) {
	registry := NewRegistry[int, string]("ids")
	registry.Register(1, "one")

	clone := registry.Clone()
	clone.Register(2, "two")

	assert.Equal(t, []int{1}, registry.List())
	assert.Equal(t, []int{1, 2}, clone.List())
}

func TestRegistry_ConcurrentRegisterUnique(t *testing.T) {
	registry := NewRegistry[string, int]("race")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if registry.RegisterUnique("only", n) == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, registry.Size())
}
