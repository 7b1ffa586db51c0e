package ls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryIsLastInFirstOut(t *testing.T) {
	reg := NewRegistry(0)
	require.NoError(t, reg.PushAll([]string{"a", "b", "a"}))
	require.Equal(t, []string{"a", "b", "a"}, reg.Snapshot())

	require.NoError(t, reg.Push("c"))
	require.Equal(t, []string{"c", "a", "b", "a"}, reg.Snapshot())

	var order []string
	var lastFlags []bool
	for {
		name, last, ok := reg.Pop()
		if !ok {
			break
		}
		order = append(order, name)
		lastFlags = append(lastFlags, last)
	}
	require.Equal(t, []string{"c", "a", "b", "a"}, order)
	require.Equal(t, []bool{false, false, false, true}, lastFlags)
	require.Zero(t, reg.Len())
}

func TestRegistryPopEmpty(t *testing.T) {
	_, last, ok := NewRegistry(0).Pop()
	require.False(t, ok)
	require.False(t, last)
}

func TestRegistryLimit(t *testing.T) {
	reg := NewRegistry(2)
	err := reg.PushAll([]string{"a", "b", "c"})
	require.ErrorIs(t, err, ErrRegistryFull)
	require.Equal(t, 2, reg.Len())
}
