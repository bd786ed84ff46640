package registry_test

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ name string }

func TestRegistry_Resolve(t *testing.T) {
	reg := registry.New[*greeter]()
	calls := 0
	reg.Register("fresh", func() *greeter {
		calls++
		return &greeter{name: "fresh"}
	})

	a, err := reg.Resolve("fresh")
	require.NoError(t, err)
	b, err := reg.Resolve("fresh")
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "factory runs on every resolution")
	assert.NotSame(t, a, b)
}

func TestRegistry_RegisterInstance(t *testing.T) {
	reg := registry.New[*greeter]()
	shared := &greeter{name: "shared"}
	reg.RegisterInstance("shared", shared)

	got, err := reg.Resolve("shared")
	require.NoError(t, err)
	assert.Same(t, shared, got)
}

func TestRegistry_NotRegistered(t *testing.T) {
	reg := registry.New[*greeter]()

	_, err := reg.Resolve("ghost")
	assert.ErrorIs(t, err, registry.ErrNotRegistered)
	assert.Contains(t, err.Error(), "ghost")
	assert.False(t, reg.Has("ghost"))
}

func TestRegistry_NamesAndClone(t *testing.T) {
	reg := registry.New[*greeter]()
	reg.RegisterInstance("b", &greeter{})
	reg.RegisterInstance("a", &greeter{})

	clone := reg.Clone()
	clone.RegisterInstance("c", &greeter{})

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Equal(t, []string{"a", "b", "c"}, clone.Names())
}
