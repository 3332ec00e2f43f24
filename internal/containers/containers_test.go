package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaAddGetRemove(t *testing.T) {
	a := New[string]()
	h := a.Add("alpha")
	v, ok := a.Get(h)
	require.True(t, ok)
	require.Equal(t, "alpha", v)

	a.Remove(h)
	_, ok = a.Get(h)
	require.False(t, ok)
}

func TestArenaReusesRemovedHandle(t *testing.T) {
	a := New[int]()
	h1 := a.Add(1)
	a.Remove(h1)
	h2 := a.Add(2)
	require.Equal(t, h1, h2, "freed handles are reused")
	v, ok := a.Get(h2)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestArenaZeroHandleNeverValid(t *testing.T) {
	a := New[int]()
	_, ok := a.Get(invalidHandle)
	require.False(t, ok)
}

func TestArenaLenAndForEach(t *testing.T) {
	a := New[int]()
	h1 := a.Add(10)
	_ = a.Add(20)
	a.Remove(h1)

	require.Equal(t, 1, a.Len())

	var seen []int
	a.ForEach(func(h Handle, v int) { seen = append(seen, v) })
	require.Equal(t, []int{20}, seen)
}

func TestArenaSetOverwritesLiveValue(t *testing.T) {
	a := New[string]()
	h := a.Add("a")
	a.Set(h, "b")
	v, ok := a.Get(h)
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestArenaSetOnRemovedIsNoop(t *testing.T) {
	a := New[string]()
	h := a.Add("a")
	a.Remove(h)
	a.Set(h, "b")
	_, ok := a.Get(h)
	require.False(t, ok)
}

func TestPtrArrayFindRemove(t *testing.T) {
	var p PtrArray[int]
	p.Add(1)
	p.Add(2)
	p.Add(3)

	require.Equal(t, 1, p.Find(2))
	require.True(t, p.RemoveElement(2))
	require.Equal(t, []int{1, 3}, p.Slice())
	require.Equal(t, -1, p.Find(2))
}

func TestPtrArrayRemoveAtOutOfRange(t *testing.T) {
	var p PtrArray[int]
	p.Add(1)
	require.False(t, p.RemoveAt(5))
	require.False(t, p.RemoveAt(-1))
	require.Equal(t, 1, p.Len())
}

func TestPtrArrayClear(t *testing.T) {
	var p PtrArray[int]
	p.Add(1)
	p.Add(2)
	p.Clear()
	require.Equal(t, 0, p.Len())
}
